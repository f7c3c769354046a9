package handler

import (
	"strings"

	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
)

const maxDescriptionLength = 1024

// AddVoterRequest is the body of POST /ballots/{ballotID}/voters.
type AddVoterRequest struct {
	Identity string `json:"identity"`

	parsedIdentity domain.Identity
}

// Validate normalizes the voter identity.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AddVoterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Identity) == "" {
		return dErrors.New(dErrors.CodeValidation, "identity is required")
	}
	identity, err := domain.ParseIdentity(r.Identity)
	if err != nil {
		return err
	}
	r.parsedIdentity = identity
	return nil
}

// ParsedIdentity returns the normalized identity. Only valid after Validate.
func (r *AddVoterRequest) ParsedIdentity() domain.Identity {
	return r.parsedIdentity
}

// AddProposalRequest is the body of POST /ballots/{ballotID}/proposals.
// Blank descriptions are left to the ballot so the rejection message stays
// the same across transports.
type AddProposalRequest struct {
	Description string `json:"description"`
}

func (r *AddProposalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 1024 characters")
	}
	return nil
}

// SetVoteRequest is the body of POST /ballots/{ballotID}/votes.
// ProposalID is a pointer so a missing field is told apart from GENESIS.
type SetVoteRequest struct {
	ProposalID *int `json:"proposal_id"`
}

func (r *SetVoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ProposalID == nil {
		return dErrors.New(dErrors.CodeValidation, "proposal_id is required")
	}
	return nil
}
