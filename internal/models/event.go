package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventDbName  = "bitrader"
	EventColName = "events"
)

// Voter is one vote cast on an event, embedded in Event.Voters.
// Score is the number of NFTs the owner holds; it is stored verbatim
// and never enters the tallies.
type Voter struct {
	EventOwnerWalletAddress string `bson:"event_owner_wallet_address" json:"event_owner_wallet_address"`
	IsUpvote                bool   `bson:"is_upvote" json:"is_upvote"`
	Score                   uint32 `bson:"score" json:"score"`
}

// Event is a proposal-like record open for weighted up/down voting.
// ExpireAt and CreatedAt are unix seconds.
type Event struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title                string             `bson:"title" json:"title"`
	Content              string             `bson:"content" json:"content"`
	CreatorWalletAddress string             `bson:"creator_wallet_address" json:"creator_wallet_address"`
	Upvotes              uint16             `bson:"upvotes" json:"upvotes"`
	Downvotes            uint16             `bson:"downvotes" json:"downvotes"`
	Voters               []Voter            `bson:"voters" json:"voters"`
	IsExpired            bool               `bson:"is_expired" json:"is_expired"`
	ExpireAt             int64              `bson:"expire_at" json:"expire_at"`
	CreatedAt            int64              `bson:"created_at" json:"created_at"`
}

// EventAddRequest is the writable subset of Event; the server fills
// everything else.
type EventAddRequest struct {
	Title                string `json:"title"`
	Content              string `json:"content"`
	CreatorWalletAddress string `json:"creator_wallet_address"`
}

type CastVoteRequest struct {
	EventID string `json:"_id"`
	Voter   Voter  `json:"voter"`
}

type ExpireEventRequest struct {
	EventID string `json:"_id"`
}

type AvailableEvents struct {
	Events []Event `json:"events"`
}

// NewEvent builds a fresh event from the writable fields and the current
// wall clock. Timestamps are truncated to whole seconds.
func NewEvent(req EventAddRequest, now time.Time, expirationSeconds int64) *Event {
	createdAt := now.UnixNano() / 1_000_000_000
	return &Event{
		Title:                req.Title,
		Content:              req.Content,
		CreatorWalletAddress: req.CreatorWalletAddress,
		Upvotes:              0,
		Downvotes:            0,
		Voters:               []Voter{},
		IsExpired:            false,
		ExpireAt:             createdAt + expirationSeconds,
		CreatedAt:            createdAt,
	}
}

// MergeVoter folds a vote into the event and returns the updated voter
// list and tallies without mutating the receiver.
//
// A wallet address appears at most once in the voter list: if the voter
// is already recorded the list is returned unchanged, first match wins.
// The tallies increment on every call, recorded voter or not, which
// matches the observable behavior of the deployed service. Counts are
// uint16 and wrap at 65535.
func (e *Event) MergeVoter(voter Voter) ([]Voter, uint16, uint16) {
	voters := e.Voters
	found := false
	for _, v := range voters {
		if v.EventOwnerWalletAddress == voter.EventOwnerWalletAddress {
			found = true
			break
		}
	}
	if !found {
		voters = append(append([]Voter{}, voters...), voter)
	}

	upvotes, downvotes := e.Upvotes, e.Downvotes
	if voter.IsUpvote {
		upvotes++
	} else {
		downvotes++
	}
	return voters, upvotes, downvotes
}
