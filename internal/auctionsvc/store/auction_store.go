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

type AuctionStore struct {
	col *mongo.Collection
}

func NewAuctionStore(db *mongo.Database) *AuctionStore {
	return &AuctionStore{col: db.Collection("auctions")}
}

func (s *AuctionStore) Create(ctx context.Context, auction *models.Auction) error {
	auction.CreatedAt = time.Now().UTC()

	res, err := s.col.InsertOne(ctx, auction)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", err)
	}
	auction.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *AuctionStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Auction, error) {
	auction := &models.Auction{}
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(auction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // auction not found
		}
		return nil, fmt.Errorf("failed to get auction by ID: %w", err)
	}
	return auction, nil
}

func (s *AuctionStore) List(ctx context.Context) ([]*models.Auction, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer cur.Close(ctx)

	var auctions []*models.Auction
	if err := cur.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("failed to decode auctions: %w", err)
	}
	return auctions, nil
}

func (s *AuctionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	return nil
}
