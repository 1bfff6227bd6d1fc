package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carlschroedl/votelib/pkg/db"
)

// ResultStore defines the database operations needed to view stored counts
type ResultStore interface {
	GetElections(ctx context.Context) ([]db.Election, error)
	GetRounds(ctx context.Context, electionID string) ([]db.Round, error)
}

// ListElections returns all stored counts, most recent first
func ListElections(ctx context.Context, store ResultStore, logger *zap.Logger) ([]db.Election, error) {
	elections, err := store.GetElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elections: %w", err)
	}
	logger.Debug("fetched elections", zap.Int("count", len(elections)))
	return elections, nil
}

// ViewElection returns one stored count with its round records
func ViewElection(ctx context.Context, store ResultStore, logger *zap.Logger, electionID string) (*db.Election, []db.Round, error) {
	elections, err := store.GetElections(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch elections: %w", err)
	}
	var election *db.Election
	for i := range elections {
		if elections[i].ID == electionID {
			election = &elections[i]
			break
		}
	}
	if election == nil {
		return nil, nil, fmt.Errorf("election %q not found", electionID)
	}

	rounds, err := store.GetRounds(ctx, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch rounds: %w", err)
	}
	logger.Debug("fetched rounds", zap.String("election_id", electionID), zap.Int("count", len(rounds)))
	return election, rounds, nil
}
