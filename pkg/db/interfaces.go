package db

import "context"

// Database defines the interface for storing and retrieving count results.
// pkg/postgres provides the implementation; tests use hand-written mocks.
type Database interface {
	InsertElection(ctx context.Context, election *Election) error
	InsertRounds(ctx context.Context, rounds []Round) error
	GetElections(ctx context.Context) ([]Election, error)
	GetRounds(ctx context.Context, electionID string) ([]Round, error)
}
