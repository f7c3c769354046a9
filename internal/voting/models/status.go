package models

import (
	"fmt"

	dErrors "alyra/pkg/domain-errors"
)

// WorkflowStatus is the ballot phase. It only ever moves forward by one step.
type WorkflowStatus int

const (
	RegisteringVoters WorkflowStatus = iota
	ProposalsRegistrationStarted
	ProposalsRegistrationEnded
	VotingSessionStarted
	VotingSessionEnded
	VotesTallied
)

var statusNames = [...]string{
	RegisteringVoters:            "RegisteringVoters",
	ProposalsRegistrationStarted: "ProposalsRegistrationStarted",
	ProposalsRegistrationEnded:   "ProposalsRegistrationEnded",
	VotingSessionStarted:         "VotingSessionStarted",
	VotingSessionEnded:           "VotingSessionEnded",
	VotesTallied:                 "VotesTallied",
}

func (s WorkflowStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("WorkflowStatus(%d)", int(s))
	}
	return statusNames[s]
}

// IsValid reports whether s is one of the six phases.
func (s WorkflowStatus) IsValid() bool {
	return s >= RegisteringVoters && s <= VotesTallied
}

// CanTransitionTo reports whether next is the single legal successor of s.
func (s WorkflowStatus) CanTransitionTo(next WorkflowStatus) bool {
	return s.IsValid() && next.IsValid() && next == s+1
}

// Operation names a state-changing ballot operation.
type Operation string

const (
	OpAddVoter                  Operation = "addVoter"
	OpStartProposalsRegistering Operation = "startProposalsRegistering"
	OpAddProposal               Operation = "addProposal"
	OpEndProposalsRegistering   Operation = "endProposalsRegistering"
	OpStartVotingSession        Operation = "startVotingSession"
	OpSetVote                   Operation = "setVote"
	OpEndVotingSession          Operation = "endVotingSession"
	OpTallyVotes                Operation = "tallyVotes"
)

// phaseRule is one row of the workflow table: the phase an operation is
// accepted in and, for transitions, the phase it leads to.
type phaseRule struct {
	requires WorkflowStatus
	advances bool
	message  string
}

var phaseRules = map[Operation]phaseRule{
	OpAddVoter:                  {requires: RegisteringVoters, message: "Voters registration is not open yet"},
	OpStartProposalsRegistering: {requires: RegisteringVoters, advances: true, message: "Registering proposals cant be started now"},
	OpAddProposal:               {requires: ProposalsRegistrationStarted, message: "Proposals are not allowed yet"},
	OpEndProposalsRegistering:   {requires: ProposalsRegistrationStarted, advances: true, message: "Registering proposals havent started yet"},
	OpStartVotingSession:        {requires: ProposalsRegistrationEnded, advances: true, message: "Registering proposals phase is not finished"},
	OpSetVote:                   {requires: VotingSessionStarted, message: "Voting session havent started yet"},
	OpEndVotingSession:          {requires: VotingSessionStarted, advances: true, message: "Voting session havent started yet"},
	OpTallyVotes:                {requires: VotingSessionEnded, advances: true, message: "Current status is not voting session ended"},
}

// Check returns a phase error when op is not accepted in status s.
func (op Operation) Check(s WorkflowStatus) error {
	rule, ok := phaseRules[op]
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "unknown operation "+string(op))
	}
	if s != rule.requires {
		return dErrors.New(dErrors.CodeInvalidState, rule.message)
	}
	return nil
}

// Next returns the phase op leads to from s, and false when op does not
// change the phase.
func (op Operation) Next(s WorkflowStatus) (WorkflowStatus, bool) {
	rule, ok := phaseRules[op]
	if !ok || !rule.advances {
		return s, false
	}
	return rule.requires + 1, true
}
