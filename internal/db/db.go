package db

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectToDB(mongoURI string) (*mongo.Database, context.CancelFunc, error) {
	uri, err := url.Parse(mongoURI)
	if err != nil {
		log.Fatalf("Error parsing MongoDB URI: %v", err)
		return nil, nil, err
	}

	dbName := strings.TrimPrefix(uri.Path, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Error pinging MongoDB: %v", err)
		return nil, nil, err
	}

	db := client.Database(dbName)

	return db, cancel, nil
}

// EnsureIndexes creates the lookup indexes the record store relies on:
// teams and players by auction, players additionally by display order.
func EnsureIndexes(db *mongo.Database) {
	indexes := map[string][]mongo.IndexModel{
		"teams": {
			{Keys: bson.D{{Key: "auctionId", Value: 1}}},
		},
		"players": {
			{Keys: bson.D{{Key: "auctionId", Value: 1}, {Key: "order", Value: 1}}},
			{Keys: bson.D{{Key: "soldTo", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		_, err := db.Collection(collection).Indexes().CreateMany(context.TODO(), models)
		if err != nil {
			log.Fatal(err)
		}
	}
}
