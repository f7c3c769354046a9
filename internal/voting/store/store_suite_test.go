package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	"alyra/pkg/platform/sentinel"
)

type ballotStore interface {
	RunInTx(ctx context.Context, id domain.BallotID, fn func(txCtx context.Context) error) error
	Create(ctx context.Context, b *models.Ballot) error
	FindByID(ctx context.Context, id domain.BallotID) (*models.Ballot, error)
	Save(ctx context.Context, b *models.Ballot) error
	List(ctx context.Context) ([]*models.Ballot, error)
}

// StoreSuite holds behaviour every ballot store must share. Backends embed it
// and set newStore.
type StoreSuite struct {
	suite.Suite
	newStore func() ballotStore
	store    ballotStore
	ctx      context.Context
	now      time.Time
}

const admin = domain.Identity("owner")

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) newBallot(offset time.Duration) *models.Ballot {
	b, err := models.NewBallot(domain.NewBallotID(), admin, s.now.Add(offset))
	s.Require().NoError(err)
	return b
}

func (s *StoreSuite) TestCreateAndFind() {
	b := s.newBallot(0)
	s.Require().NoError(b.AddVoter(admin, "alice", s.now))
	s.Require().NoError(s.store.Create(s.ctx, b))

	got, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)
	s.Equal(admin, got.Administrator)
	s.Equal(models.RegisteringVoters, got.Status)
	s.True(got.IsVoter("alice"))
	s.True(b.CreatedAt.Equal(got.CreatedAt))
	s.Empty(got.PullEvents(), "stored ballots carry no pending events")
}

func (s *StoreSuite) TestCreateDuplicate() {
	b := s.newBallot(0)
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.ErrorIs(s.store.Create(s.ctx, b), sentinel.ErrAlreadyExists)
}

func (s *StoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(s.ctx, domain.NewBallotID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestSaveUnknown() {
	s.ErrorIs(s.store.Save(s.ctx, s.newBallot(0)), sentinel.ErrNotFound)
}

func (s *StoreSuite) TestSaveRoundTripsVotes() {
	b := s.newBallot(0)
	s.Require().NoError(s.store.Create(s.ctx, b))

	s.Require().NoError(b.AddVoter(admin, "alice", s.now))
	s.Require().NoError(b.StartProposalsRegistering(admin, s.now))
	_, err := b.AddProposal("alice", "plant trees", s.now)
	s.Require().NoError(err)
	s.Require().NoError(b.EndProposalsRegistering(admin, s.now))
	s.Require().NoError(b.StartVotingSession(admin, s.now))
	s.Require().NoError(b.SetVote("alice", 1, s.now))
	s.Require().NoError(s.store.Save(s.ctx, b))

	got, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(models.VotingSessionStarted, got.Status)
	s.Require().Len(got.Proposals, 2)
	s.Equal(models.GenesisDescription, got.Proposals[0].Description)
	s.Equal(1, got.Proposals[1].VoteCount)
	voter := got.Voters["alice"]
	s.True(voter.HasVoted)
	s.Require().NotNil(voter.VotedProposalID)
	s.Equal(1, *voter.VotedProposalID)
}

func (s *StoreSuite) TestRunInTxCommits() {
	b := s.newBallot(0)
	err := s.store.RunInTx(s.ctx, b.ID, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, b); err != nil {
			return err
		}
		loaded, err := s.store.FindByID(txCtx, b.ID)
		if err != nil {
			return err
		}
		if err := loaded.AddVoter(admin, "alice", s.now); err != nil {
			return err
		}
		return s.store.Save(txCtx, loaded)
	})
	s.Require().NoError(err)

	got, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.True(got.IsVoter("alice"))
}

func (s *StoreSuite) TestRunInTxDiscardsOnError() {
	b := s.newBallot(0)
	s.Require().NoError(s.store.Create(s.ctx, b))
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, b.ID, func(txCtx context.Context) error {
		loaded, err := s.store.FindByID(txCtx, b.ID)
		if err != nil {
			return err
		}
		if err := loaded.AddVoter(admin, "alice", s.now); err != nil {
			return err
		}
		if err := s.store.Save(txCtx, loaded); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.False(got.IsVoter("alice"))
}

func (s *StoreSuite) TestRunInTxSerialisesWriters() {
	b := s.newBallot(0)
	s.Require().NoError(s.store.Create(s.ctx, b))

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.store.RunInTx(s.ctx, b.ID, func(txCtx context.Context) error {
				loaded, err := s.store.FindByID(txCtx, b.ID)
				if err != nil {
					return err
				}
				if err := loaded.AddVoter(admin, domain.Identity(fmt.Sprintf("voter-%02d", i)), s.now); err != nil {
					return err
				}
				return s.store.Save(txCtx, loaded)
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Len(got.Voters, writers)
}

func (s *StoreSuite) TestListOrdersByCreation() {
	later := s.newBallot(time.Minute)
	earlier := s.newBallot(0)
	s.Require().NoError(s.store.Create(s.ctx, later))
	s.Require().NoError(s.store.Create(s.ctx, earlier))

	got, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(earlier.ID, got[0].ID)
	s.Equal(later.ID, got[1].ID)
}
