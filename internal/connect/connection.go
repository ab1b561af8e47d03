package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mode tells whether the storage behind a handle is reachable. A handle
// in ModeOff is still passed around; every primitive built on it fails
// with a storage-unavailable error instead of panicking.
type Mode int

const (
	ModeOff Mode = iota
	ModeOn
)

// Storage is the shared database handle. It is built once at startup,
// handed to every repository, and never mutated afterwards.
type Storage struct {
	ID     uuid.UUID
	Mode   Mode
	Client *mongo.Client
}

// Connect dials MongoDB at the given URI and returns an on-mode handle.
func Connect(ctx context.Context, uri string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	return &Storage{
		ID:     uuid.New(),
		Mode:   ModeOn,
		Client: client,
	}, nil
}

// Detached returns an off-mode handle with no client behind it.
func Detached() *Storage {
	return &Storage{
		ID:   uuid.New(),
		Mode: ModeOff,
	}
}

func (s *Storage) Disconnect(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %v", err)
	}
	return nil
}
