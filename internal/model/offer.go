package model

import "time"

// Offer display surfaces.
const (
	OfferTypeMarquee      = "marquee"
	OfferTypeBanner       = "banner"
	OfferTypePopup        = "popup"
	OfferTypeNotification = "notification"
)

// Offer is a storefront announcement shown on the homepage.
type Offer struct {
	BaseModel `bson:",inline"`
	Message   string     `bson:"message" json:"message"`
	Type      string     `bson:"type" json:"type"`
	Active    bool       `bson:"active" json:"active"`
	Priority  int        `bson:"priority" json:"priority"`
	StartDate time.Time  `bson:"startDate" json:"startDate"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// IsValidOfferType reports whether t names a known display surface.
func IsValidOfferType(t string) bool {
	switch t {
	case OfferTypeMarquee, OfferTypeBanner, OfferTypePopup, OfferTypeNotification:
		return true
	}
	return false
}
