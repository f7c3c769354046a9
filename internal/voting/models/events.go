package models

import (
	"time"

	"alyra/pkg/domain"
)

// EventType names a ballot event on the wire and in the audit trail.
type EventType string

const (
	EventBallotCreated        EventType = "ballot_created"
	EventVoterRegistered      EventType = "voter_registered"
	EventProposalRegistered   EventType = "proposal_registered"
	EventWorkflowStatusChange EventType = "workflow_status_change"
	EventVoted                EventType = "voted"
	EventVotesTallied         EventType = "votes_tallied"
)

// Event is a fact produced by a successful ballot operation.
type Event interface {
	Type() EventType
}

type BallotCreated struct {
	Administrator domain.Identity `json:"administrator"`
}

type VoterRegistered struct {
	VoterAddress domain.Identity `json:"voter_address"`
}

type ProposalRegistered struct {
	ProposalID int `json:"proposal_id"`
}

type WorkflowStatusChange struct {
	PreviousStatus WorkflowStatus `json:"previous_status"`
	NewStatus      WorkflowStatus `json:"new_status"`
}

type Voted struct {
	Voter      domain.Identity `json:"voter"`
	ProposalID int             `json:"proposal_id"`
}

type VotesTalliedEvent struct {
	WinningProposalID int `json:"winning_proposal_id"`
}

func (BallotCreated) Type() EventType        { return EventBallotCreated }
func (VoterRegistered) Type() EventType      { return EventVoterRegistered }
func (ProposalRegistered) Type() EventType   { return EventProposalRegistered }
func (WorkflowStatusChange) Type() EventType { return EventWorkflowStatusChange }
func (Voted) Type() EventType                { return EventVoted }
func (VotesTalliedEvent) Type() EventType    { return EventVotesTallied }

// Envelope carries an event together with the ballot and caller that
// produced it. ID is assigned once when the event is recorded and follows
// the event into every sink.
type Envelope struct {
	ID         domain.EventID
	BallotID   domain.BallotID
	Actor      domain.Identity
	OccurredAt time.Time
	Event      Event
}
