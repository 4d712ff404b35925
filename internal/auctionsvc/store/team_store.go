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

type TeamStore struct {
	col *mongo.Collection
}

func NewTeamStore(db *mongo.Database) *TeamStore {
	return &TeamStore{col: db.Collection("teams")}
}

func (s *TeamStore) Create(ctx context.Context, team *models.Team) error {
	team.CreatedAt = time.Now().UTC()
	if team.Players == nil {
		team.Players = []primitive.ObjectID{}
	}

	res, err := s.col.InsertOne(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	team.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	team := &models.Team{}
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // team not found
		}
		return nil, fmt.Errorf("failed to get team by ID: %w", err)
	}
	return team, nil
}

func (s *TeamStore) ListByAuction(ctx context.Context, auctionID primitive.ObjectID) ([]*models.Team, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cur, err := s.col.Find(ctx, bson.M{"auctionId": auctionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer cur.Close(ctx)

	var teams []*models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}

// AddPlayer charges the team and records ownership in one atomic update.
func (s *TeamStore) AddPlayer(ctx context.Context, teamID, playerID primitive.ObjectID, amount int64) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": teamID}, bson.M{
		"$inc":  bson.M{"spent": amount},
		"$push": bson.M{"players": playerID},
	})
	if err != nil {
		return fmt.Errorf("failed to add player to team: %w", err)
	}
	return nil
}

// RemovePlayer refunds the team and drops the ownership reference.
func (s *TeamStore) RemovePlayer(ctx context.Context, teamID, playerID primitive.ObjectID, refund int64) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": teamID}, bson.M{
		"$inc":  bson.M{"spent": -refund},
		"$pull": bson.M{"players": playerID},
	})
	if err != nil {
		return fmt.Errorf("failed to remove player from team: %w", err)
	}
	return nil
}

func (s *TeamStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *TeamStore) DeleteByAuction(ctx context.Context, auctionID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"auctionId": auctionID})
	if err != nil {
		return fmt.Errorf("failed to delete teams by auction: %w", err)
	}
	return nil
}
