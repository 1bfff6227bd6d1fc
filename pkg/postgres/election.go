package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/carlschroedl/votelib/pkg/db"
)

// InsertElection inserts a stored count record
func (d *DB) InsertElection(ctx context.Context, election *db.Election) error {
	countedAt, err := time.Parse(time.RFC3339, election.CountedAt)
	if err != nil {
		return fmt.Errorf("invalid counted_at timestamp: %w", err)
	}
	_, err = d.pool.Exec(ctx, `
		INSERT INTO election (id, name, seats, method, quota_rule, quota, elected, counted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, election.ID, election.Name, election.Seats, election.Method,
		election.QuotaRule, election.Quota, election.Elected, countedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert election: %w", err)
	}
	return nil
}

// InsertRounds inserts round records with their candidate totals
func (d *DB) InsertRounds(ctx context.Context, rounds []db.Round) error {
	if len(rounds) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range rounds {
		_, err := tx.Exec(ctx, `
			INSERT INTO round (id, election_id, number, elected, eliminated)
			VALUES ($1, $2, $3, $4, $5)
		`, r.ID, r.ElectionID, r.Number, textArray(r.Elected), textArray(r.Eliminated))
		if err != nil {
			return fmt.Errorf("failed to insert round %d: %w", r.Number, err)
		}
		for _, total := range r.Totals {
			_, err := tx.Exec(ctx, `
				INSERT INTO round_total (round_id, candidate, votes)
				VALUES ($1, $2, $3)
			`, r.ID, total.Candidate, total.Votes)
			if err != nil {
				return fmt.Errorf("failed to insert totals for round %d: %w", r.Number, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rounds: %w", err)
	}
	return nil
}

// GetElections retrieves all stored counts, most recent first
func (d *DB) GetElections(ctx context.Context) ([]db.Election, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, seats, method, quota_rule, quota, elected, counted_at
		FROM election
		ORDER BY counted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	var elections []db.Election
	for rows.Next() {
		var e db.Election
		var countedAt time.Time
		if err := rows.Scan(&e.ID, &e.Name, &e.Seats, &e.Method, &e.QuotaRule,
			&e.Quota, &e.Elected, &countedAt); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		e.CountedAt = countedAt.UTC().Format(time.RFC3339)
		elections = append(elections, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elections: %w", err)
	}

	return elections, nil
}

// GetRounds retrieves the rounds of a stored count in order, totals included
func (d *DB) GetRounds(ctx context.Context, electionID string) ([]db.Round, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, election_id, number, elected, eliminated
		FROM round
		WHERE election_id = $1
		ORDER BY number
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}

	var rounds []db.Round
	byID := make(map[string]int)
	for rows.Next() {
		var r db.Round
		if err := rows.Scan(&r.ID, &r.ElectionID, &r.Number, &r.Elected, &r.Eliminated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		byID[r.ID] = len(rounds)
		rounds = append(rounds, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rounds: %w", err)
	}

	totalRows, err := d.pool.Query(ctx, `
		SELECT rt.round_id, rt.candidate, rt.votes
		FROM round_total rt
		JOIN round r ON r.id = rt.round_id
		WHERE r.election_id = $1
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round totals: %w", err)
	}
	defer totalRows.Close()

	for totalRows.Next() {
		var roundID string
		var total db.CandidateTotal
		if err := totalRows.Scan(&roundID, &total.Candidate, &total.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan round total: %w", err)
		}
		if idx, ok := byID[roundID]; ok {
			rounds[idx].Totals = append(rounds[idx].Totals, total)
		}
	}
	if err := totalRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round totals: %w", err)
	}

	for i := range rounds {
		sort.Slice(rounds[i].Totals, func(a, b int) bool {
			return rounds[i].Totals[a].Candidate < rounds[i].Totals[b].Candidate
		})
	}

	return rounds, nil
}

// textArray keeps empty slices as empty postgres arrays rather than NULLs
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
