package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseModel carries the fields common to every persisted document.
type BaseModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
