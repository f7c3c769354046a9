package store

import (
	"context"
	"fmt"
	"sync"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	"alyra/pkg/platform/sentinel"
)

// InMemory keeps ballots in a map. Reads and writes hand out clones so no
// caller ever aliases stored state.
type InMemory struct {
	mu      sync.RWMutex
	ballots map[domain.BallotID]*models.Ballot
	gate    *gate
}

func NewInMemory(opts ...Option) *InMemory {
	o := applyOptions(opts)
	return &InMemory{
		ballots: make(map[domain.BallotID]*models.Ballot),
		gate:    newGate(o.txTimeout),
	}
}

// staging buffers the writes of one transaction.
type staging struct {
	id     domain.BallotID
	ballot *models.Ballot
}

type stagingKey struct{}

func stagingFrom(ctx context.Context) *staging {
	st, _ := ctx.Value(stagingKey{}).(*staging)
	return st
}

// RunInTx runs fn with exclusive access to ballot id. Writes made through
// txCtx are applied only when fn returns nil.
func (s *InMemory) RunInTx(ctx context.Context, id domain.BallotID, fn func(txCtx context.Context) error) error {
	txCtx, release, err := s.gate.enter(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	st := &staging{id: id}
	if err := fn(context.WithValue(txCtx, stagingKey{}, st)); err != nil {
		return err
	}
	if st.ballot != nil {
		s.mu.Lock()
		s.ballots[id] = st.ballot
		s.mu.Unlock()
	}
	return nil
}

func (s *InMemory) Create(ctx context.Context, b *models.Ballot) error {
	if st := stagingFrom(ctx); st != nil {
		if err := st.check(b.ID); err != nil {
			return err
		}
		if st.ballot != nil || s.exists(b.ID) {
			return sentinel.ErrAlreadyExists
		}
		st.ballot = b.Clone()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ballots[b.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.ballots[b.ID] = b.Clone()
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.BallotID) (*models.Ballot, error) {
	if st := stagingFrom(ctx); st != nil && st.id == id && st.ballot != nil {
		return st.ballot.Clone(), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.ballots[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *InMemory) Save(ctx context.Context, b *models.Ballot) error {
	if st := stagingFrom(ctx); st != nil {
		if err := st.check(b.ID); err != nil {
			return err
		}
		if st.ballot == nil && !s.exists(b.ID) {
			return sentinel.ErrNotFound
		}
		st.ballot = b.Clone()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ballots[b.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.ballots[b.ID] = b.Clone()
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Ballot, error) {
	s.mu.RLock()
	out := make([]*models.Ballot, 0, len(s.ballots))
	for _, b := range s.ballots {
		out = append(out, b.Clone())
	}
	s.mu.RUnlock()
	sortBallots(out)
	return out, nil
}

func (s *InMemory) exists(id domain.BallotID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ballots[id]
	return ok
}

func (st *staging) check(id domain.BallotID) error {
	if st.id != id {
		return fmt.Errorf("write to ballot %s inside transaction for %s", id, st.id)
	}
	return nil
}
