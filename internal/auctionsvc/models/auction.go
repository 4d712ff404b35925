package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Auction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	AccessCode string             `bson:"accessCode" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
