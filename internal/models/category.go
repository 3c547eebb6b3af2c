package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category agrupa productos; name y slug son únicos
type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required,max=100"`
	Slug        string             `json:"slug" bson:"slug" validate:"required,max=100"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	SortOrder   int                `json:"sortOrder" bson:"sort_order"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}
