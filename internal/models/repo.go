package models

import (
	"context"

	"github.com/bitrader/auth/internal/connect"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventRepo is the storage gateway for the events collection.
//
// Lookup primitives return (nil, nil) when no document matched; errors
// are reserved for the storage layer itself.
type EventRepo interface {
	FindByTitle(ctx context.Context, title string) (*Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListActive(ctx context.Context) ([]Event, error)
	Insert(ctx context.Context, event *Event) (primitive.ObjectID, error)
	UpdateVotes(ctx context.Context, id primitive.ObjectID, voters []Voter, upvotes, downvotes uint16) (bool, error)
	Expire(ctx context.Context, id primitive.ObjectID) (*Event, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
}

type MongodbRepo struct {
	storage *connect.Storage
}

func MongodbNewRepo(storage *connect.Storage) *MongodbRepo {
	return &MongodbRepo{
		storage: storage,
	}
}
