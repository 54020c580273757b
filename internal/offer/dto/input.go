package dto

import "time"

// CreateOfferInput creates a promotional announcement.
type CreateOfferInput struct {
	Message   string     `json:"message" validate:"required"`
	Type      string     `json:"type" validate:"omitempty,oneof=marquee banner popup notification"`
	Active    *bool      `json:"active"`
	Priority  *int       `json:"priority" validate:"omitempty,min=1,max=10"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// UpdateOfferInput patches an offer; nil fields are left untouched.
type UpdateOfferInput struct {
	ID        string     `json:"-"`
	Message   *string    `json:"message"`
	Type      *string    `json:"type" validate:"omitempty,oneof=marquee banner popup notification"`
	Active    *bool      `json:"active"`
	Priority  *int       `json:"priority" validate:"omitempty,min=1,max=10"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}
