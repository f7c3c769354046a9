package models

import dErrors "alyra/pkg/domain-errors"

// Rejections raised by ballot operations. Messages are stable and returned
// to callers verbatim.
var (
	ErrNotAdministrator  = dErrors.New(dErrors.CodeForbidden, "Ownable: caller is not the owner")
	ErrNotVoter          = dErrors.New(dErrors.CodeForbidden, "You're not a voter")
	ErrAlreadyRegistered = dErrors.New(dErrors.CodeValidation, "Already registered")
	ErrEmptyProposal     = dErrors.New(dErrors.CodeValidation, "Vous ne pouvez pas ne rien proposer")
	ErrAlreadyVoted      = dErrors.New(dErrors.CodeValidation, "You have already voted")
	ErrProposalNotFound  = dErrors.New(dErrors.CodeNotFound, "Proposal not found")
	ErrVoterNotFound     = dErrors.New(dErrors.CodeNotFound, "Voter not found")
	ErrNotTallied        = dErrors.New(dErrors.CodeInvalidState, "Votes have not been tallied yet")
)
