package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitrader/auth/internal/connect"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStorageUnavailable is returned by every primitive when the storage
// handle is in off mode.
var ErrStorageUnavailable = errors.New("storage is not available")

func (mdb *MongodbRepo) events() (*mongo.Collection, error) {
	if mdb.storage == nil || mdb.storage.Mode == connect.ModeOff || mdb.storage.Client == nil {
		return nil, ErrStorageUnavailable
	}
	return mdb.storage.Client.Database(EventDbName).Collection(EventColName), nil
}

func (mdb *MongodbRepo) FindByTitle(ctx context.Context, title string) (*Event, error) {
	col, err := mdb.events()
	if err != nil {
		return nil, err
	}

	var event Event
	err = col.FindOne(ctx, bson.M{"title": title}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event by title: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.events()
	if err != nil {
		return nil, err
	}

	var event Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event by id: %v", err)
	}
	return &event, nil
}

// ListActive reads every event whose is_expired flag is still false.
// Ordering is whatever the cursor yields.
func (mdb *MongodbRepo) ListActive(ctx context.Context) ([]Event, error) {
	col, err := mdb.events()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, bson.M{"is_expired": false})
	if err != nil {
		return nil, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	events := []Event{}
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, event)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}

func (mdb *MongodbRepo) Insert(ctx context.Context, event *Event) (primitive.ObjectID, error) {
	col, err := mdb.events()
	if err != nil {
		return primitive.NilObjectID, err
	}

	result, err := col.InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("error inserting event: %v", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (mdb *MongodbRepo) UpdateVotes(ctx context.Context, id primitive.ObjectID, voters []Voter, upvotes, downvotes uint16) (bool, error) {
	col, err := mdb.events()
	if err != nil {
		return false, err
	}

	update := bson.M{
		"$set": bson.M{
			"voters":    voters,
			"upvotes":   upvotes,
			"downvotes": downvotes,
		},
	}
	result, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, fmt.Errorf("error updating votes: %v", err)
	}
	return result.MatchedCount > 0, nil
}

// Expire flips is_expired and returns the post-update document. The
// update is unconditional, so expiring twice is a no-op that still
// answers with the document.
func (mdb *MongodbRepo) Expire(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.events()
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"is_expired": true}}

	var event Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error expiring event: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.events()
	if err != nil {
		return nil, err
	}

	var event Event
	err = col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error deleting event: %v", err)
	}
	return &event, nil
}
