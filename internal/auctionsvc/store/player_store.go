package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bidarena/auction-services/internal/auctionsvc/models"
)

type PlayerStore struct {
	col *mongo.Collection
}

func NewPlayerStore(db *mongo.Database) *PlayerStore {
	return &PlayerStore{col: db.Collection("players")}
}

func (s *PlayerStore) Create(ctx context.Context, player *models.Player) error {
	player.CreatedAt = time.Now().UTC()

	res, err := s.col.InsertOne(ctx, player)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	player.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *PlayerStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Player, error) {
	player := &models.Player{}
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // player not found
		}
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}
	return player, nil
}

func (s *PlayerStore) ListByAuction(ctx context.Context, auctionID primitive.ObjectID) ([]*models.Player, error) {
	opts := options.Find().SetSort(bson.M{"order": 1})
	cur, err := s.col.Find(ctx, bson.M{"auctionId": auctionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer cur.Close(ctx)

	var players []*models.Player
	if err := cur.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	return players, nil
}

// CountByAuction backs the display rank assigned to a player on creation.
func (s *PlayerStore) CountByAuction(ctx context.Context, auctionID primitive.ObjectID) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"auctionId": auctionID})
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

func (s *PlayerStore) MarkSold(ctx context.Context, id, teamID primitive.ObjectID, price int64) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"isSold":    true,
			"isUnsold":  false,
			"soldTo":    teamID,
			"soldPrice": price,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark player sold: %w", err)
	}
	return nil
}

func (s *PlayerStore) MarkUnsold(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"isSold":   false,
			"isUnsold": true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark player unsold: %w", err)
	}
	return nil
}

// ResetByTeam returns every player sold to teamID to the pending pool.
// Used when a team is deleted; the players themselves are kept.
func (s *PlayerStore) ResetByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.col.UpdateMany(ctx, bson.M{"soldTo": teamID}, bson.M{
		"$set": bson.M{
			"isSold":    false,
			"soldTo":    nil,
			"soldPrice": int64(0),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset players by team: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *PlayerStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func (s *PlayerStore) DeleteByAuction(ctx context.Context, auctionID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"auctionId": auctionID})
	if err != nil {
		return fmt.Errorf("failed to delete players by auction: %w", err)
	}
	return nil
}
