package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Player sale fields (IsSold, IsUnsold, SoldTo, SoldPrice) are written only
// by the settlement path; IsSold and IsUnsold are mutually exclusive and a
// player with both false is still pending.
type Player struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AuctionID primitive.ObjectID  `bson:"auctionId" json:"auctionId"`
	Name      string              `bson:"name" json:"name"`
	Role      string              `bson:"role" json:"role"`
	Category  string              `bson:"category" json:"category"`
	BasePrice int64               `bson:"basePrice" json:"basePrice"`
	IsSold    bool                `bson:"isSold" json:"isSold"`
	IsUnsold  bool                `bson:"isUnsold" json:"isUnsold"`
	SoldTo    *primitive.ObjectID `bson:"soldTo" json:"soldTo"`
	SoldPrice int64               `bson:"soldPrice" json:"soldPrice"`
	Order     int                 `bson:"order" json:"order"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
