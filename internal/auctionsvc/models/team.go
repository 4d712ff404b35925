package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Team struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuctionID primitive.ObjectID   `bson:"auctionId" json:"auctionId"`
	Name      string               `bson:"name" json:"name"`
	Budget    int64                `bson:"budget" json:"budget"`
	Spent     int64                `bson:"spent" json:"spent"`
	Color     string               `bson:"color" json:"color"`
	Players   []primitive.ObjectID `bson:"players" json:"players"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
