package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/bitrader/auth/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error taxonomy of the lifecycle operations. Handlers translate these
// into envelope replies; anything else is a storage failure and keeps
// the underlying message.
var (
	ErrNotFound     = errors.New("no document matched")
	ErrMalformedID  = errors.New("malformed event id")
	ErrWrongAPIKey  = errors.New("wrong api key")
	ErrEventExpired = errors.New("event is expired")
)

type EventService struct {
	eventsRepo models.EventRepo

	expirationSeconds  int64
	deleteAPIKey       string
	rejectExpiredVotes bool
}

func NewEventService(eventsRepo models.EventRepo, expirationSeconds int64, deleteAPIKey string, rejectExpiredVotes bool) *EventService {
	return &EventService{
		eventsRepo:         eventsRepo,
		expirationSeconds:  expirationSeconds,
		deleteAPIKey:       deleteAPIKey,
		rejectExpiredVotes: rejectExpiredVotes,
	}
}

// AddEventResult reports which of the two create outcomes happened:
// Existing is set when the title is already taken, otherwise InsertedID
// holds the id of the new document.
type AddEventResult struct {
	Existing   *models.Event
	InsertedID primitive.ObjectID
}

// AddEvent inserts a new event unless one with the same title already
// exists. A duplicate title is not an error; the existing document is
// handed back so the caller can point at it. The title check is a plain
// read-then-insert, two racing creates can still both land.
func (es *EventService) AddEvent(ctx context.Context, req models.EventAddRequest) (*AddEventResult, error) {
	existing, err := es.eventsRepo.FindByTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AddEventResult{Existing: existing}, nil
	}

	event := models.NewEvent(req, time.Now(), es.expirationSeconds)
	id, err := es.eventsRepo.Insert(ctx, event)
	if err != nil {
		if errors.Is(err, models.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, &InsertFailedError{Err: err}
	}
	return &AddEventResult{InsertedID: id}, nil
}

// InsertFailedError distinguishes a failed insert from a failed read so
// the handler can answer 406 with the driver message.
type InsertFailedError struct {
	Err error
}

func (e *InsertFailedError) Error() string { return e.Err.Error() }

func (e *InsertFailedError) Unwrap() error { return e.Err }

func (es *EventService) GetAvailableEvents(ctx context.Context) (*models.AvailableEvents, error) {
	events, err := es.eventsRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return &models.AvailableEvents{Events: events}, nil
}

// CastVote merges the voter into the referenced event and writes the
// updated voter list and tallies back. Voting on an expired event is
// allowed unless the reject-expired policy is on.
func (es *EventService) CastVote(ctx context.Context, req models.CastVoteRequest) error {
	id, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		return ErrMalformedID
	}

	event, err := es.eventsRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrNotFound
	}
	if es.rejectExpiredVotes && event.IsExpired {
		return ErrEventExpired
	}

	voters, upvotes, downvotes := event.MergeVoter(req.Voter)
	matched, err := es.eventsRepo.UpdateVotes(ctx, id, voters, upvotes, downvotes)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (es *EventService) ExpireEvent(ctx context.Context, req models.ExpireEventRequest) (*models.Event, error) {
	id, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		return nil, ErrMalformedID
	}

	event, err := es.eventsRepo.Expire(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}

// DeleteEvent removes an event for good. The api key is checked before
// anything touches storage.
func (es *EventService) DeleteEvent(ctx context.Context, eventID, apiKey string) (*models.Event, error) {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(es.deleteAPIKey)) != 1 {
		return nil, ErrWrongAPIKey
	}

	id, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, ErrMalformedID
	}

	event, err := es.eventsRepo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}
