package service

import (
	"context"
	"time"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
)

func (s *Service) StartProposalsRegistering(ctx context.Context, id domain.BallotID) error {
	return s.mutate(ctx, string(models.OpStartProposalsRegistering), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.StartProposalsRegistering(caller, now)
	})
}

func (s *Service) EndProposalsRegistering(ctx context.Context, id domain.BallotID) error {
	return s.mutate(ctx, string(models.OpEndProposalsRegistering), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.EndProposalsRegistering(caller, now)
	})
}

func (s *Service) StartVotingSession(ctx context.Context, id domain.BallotID) error {
	return s.mutate(ctx, string(models.OpStartVotingSession), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.StartVotingSession(caller, now)
	})
}

func (s *Service) EndVotingSession(ctx context.Context, id domain.BallotID) error {
	return s.mutate(ctx, string(models.OpEndVotingSession), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.EndVotingSession(caller, now)
	})
}

// SetVote casts the caller's single vote.
func (s *Service) SetVote(ctx context.Context, id domain.BallotID, proposalID int) error {
	return s.mutate(ctx, string(models.OpSetVote), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.SetVote(caller, proposalID, now)
	})
}

// TallyVotes computes the winner and closes the ballot.
func (s *Service) TallyVotes(ctx context.Context, id domain.BallotID) (int, error) {
	var winner int
	err := s.mutate(ctx, string(models.OpTallyVotes), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		w, err := b.TallyVotes(caller, now)
		winner = w
		return err
	})
	return winner, err
}

// WinningProposalID returns the stored result once votes are tallied.
func (s *Service) WinningProposalID(ctx context.Context, id domain.BallotID) (int, error) {
	var winner int
	err := s.read(ctx, "winningProposalID", id, false, func(b *models.Ballot, _ domain.Identity) error {
		w, err := b.Winner()
		winner = w
		return err
	})
	return winner, err
}
