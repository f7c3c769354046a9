package service

import (
	"context"
	"time"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
)

// AddVoter registers voter. Administrator only, RegisteringVoters only.
func (s *Service) AddVoter(ctx context.Context, id domain.BallotID, voter domain.Identity) error {
	return s.mutate(ctx, string(models.OpAddVoter), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		return b.AddVoter(caller, voter, now)
	})
}

// GetVoter returns the voter record. Registered voters only.
func (s *Service) GetVoter(ctx context.Context, id domain.BallotID, voter domain.Identity) (models.Voter, error) {
	var out models.Voter
	err := s.read(ctx, "getVoter", id, true, func(b *models.Ballot, caller domain.Identity) error {
		v, err := b.Voter(caller, voter)
		out = v
		return err
	})
	return out, err
}

// AddProposal registers a proposal and returns its index.
// Registered voters only, ProposalsRegistrationStarted only.
func (s *Service) AddProposal(ctx context.Context, id domain.BallotID, description string) (int, error) {
	var index int
	err := s.mutate(ctx, string(models.OpAddProposal), id, func(b *models.Ballot, caller domain.Identity, now time.Time) error {
		idx, err := b.AddProposal(caller, description, now)
		index = idx
		return err
	})
	return index, err
}

// GetOneProposal returns the proposal at index. Registered voters only.
func (s *Service) GetOneProposal(ctx context.Context, id domain.BallotID, index int) (models.Proposal, error) {
	var out models.Proposal
	err := s.read(ctx, "getOneProposal", id, true, func(b *models.Ballot, caller domain.Identity) error {
		p, err := b.Proposal(caller, index)
		out = p
		return err
	})
	return out, err
}

// ListProposals returns all proposals in index order. Registered voters only.
func (s *Service) ListProposals(ctx context.Context, id domain.BallotID) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.read(ctx, "listProposals", id, true, func(b *models.Ballot, caller domain.Identity) error {
		proposals, err := b.ListProposals(caller)
		out = proposals
		return err
	})
	return out, err
}
