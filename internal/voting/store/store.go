// Package store persists ballot aggregates.
//
// Every implementation offers RunInTx(ctx, ballotID, fn): fn runs with
// exclusive access to that ballot, and the writes it makes through the
// txCtx it receives become visible only if fn returns nil. Stores report
// missing or clashing ballots with pkg/platform/sentinel errors.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
)

type Option func(*options)

type options struct {
	txTimeout time.Duration
}

// WithTxTimeout overrides DefaultTxTimeout.
func WithTxTimeout(d time.Duration) Option {
	return func(o *options) { o.txTimeout = d }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func encodeBallot(b *models.Ballot) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode ballot %s: %w", b.ID, err)
	}
	return raw, nil
}

func decodeBallot(raw []byte) (*models.Ballot, error) {
	var b models.Ballot
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode ballot: %w", err)
	}
	if b.Voters == nil {
		b.Voters = map[domain.Identity]models.Voter{}
	}
	if b.Proposals == nil {
		b.Proposals = []models.Proposal{}
	}
	return &b, nil
}

// sortBallots orders by creation time, then id, for stable listings.
func sortBallots(ballots []*models.Ballot) {
	sort.Slice(ballots, func(i, j int) bool {
		if !ballots[i].CreatedAt.Equal(ballots[j].CreatedAt) {
			return ballots[i].CreatedAt.Before(ballots[j].CreatedAt)
		}
		return ballots[i].ID.String() < ballots[j].ID.String()
	})
}
