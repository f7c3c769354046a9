package models

import (
	"strings"
	"time"

	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
)

// GenesisDescription is the sentinel proposal seeded at index 0 when proposal
// registration opens. It takes part in the tally like any other proposal.
const GenesisDescription = "GENESIS"

// Voter is the registry record for one identity.
// VotedProposalID is nil until the voter casts a vote.
type Voter struct {
	IsRegistered    bool `json:"is_registered"`
	HasVoted        bool `json:"has_voted"`
	VotedProposalID *int `json:"voted_proposal_id"`
}

// Proposal is a submitted option. Its index in Ballot.Proposals is its id.
type Proposal struct {
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
}

// Ballot is the aggregate root for one voting instance.
//
// Invariants:
//   - Administrator is set at creation and never changes
//   - Status only advances one phase at a time
//   - a voter is registered at most once and votes at most once
//   - Proposals is append-only; index 0 is GENESIS once proposals open
//   - sum of VoteCount equals the number of voters with HasVoted
//   - WinningProposalID is meaningful only once Status is VotesTallied
//
// Operations validate role, then phase, then input, and mutate only after
// every check passed. Callers that need all-or-nothing semantics across a
// store round trip work on a Clone and discard it on error.
type Ballot struct {
	ID                domain.BallotID           `json:"id"`
	Administrator     domain.Identity           `json:"administrator"`
	Status            WorkflowStatus            `json:"status"`
	Voters            map[domain.Identity]Voter `json:"voters"`
	Proposals         []Proposal                `json:"proposals"`
	WinningProposalID int                       `json:"winning_proposal_id"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`

	pending []Envelope
}

// NewBallot creates a ballot in RegisteringVoters administered by admin.
func NewBallot(id domain.BallotID, admin domain.Identity, now time.Time) (*Ballot, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ballot id cannot be nil")
	}
	if admin.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ballot administrator cannot be empty")
	}
	b := &Ballot{
		ID:            id,
		Administrator: admin,
		Status:        RegisteringVoters,
		Voters:        make(map[domain.Identity]Voter),
		Proposals:     []Proposal{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.record(admin, now, BallotCreated{Administrator: admin})
	return b, nil
}

// Clone returns a deep copy without pending events.
func (b *Ballot) Clone() *Ballot {
	c := *b
	c.Voters = make(map[domain.Identity]Voter, len(b.Voters))
	for k, v := range b.Voters {
		if v.VotedProposalID != nil {
			p := *v.VotedProposalID
			v.VotedProposalID = &p
		}
		c.Voters[k] = v
	}
	c.Proposals = append(make([]Proposal, 0, len(b.Proposals)), b.Proposals...)
	c.pending = nil
	return &c
}

// PullEvents returns the events recorded since the last call and clears them.
func (b *Ballot) PullEvents() []Envelope {
	events := b.pending
	b.pending = nil
	return events
}

func (b *Ballot) record(actor domain.Identity, now time.Time, e Event) {
	b.pending = append(b.pending, Envelope{
		ID:         domain.NewEventID(),
		BallotID:   b.ID,
		Actor:      actor,
		OccurredAt: now,
		Event:      e,
	})
}

// -----------------------------------------------------------------------------
// Voter registry
// -----------------------------------------------------------------------------

// AddVoter registers voter. Administrator only, RegisteringVoters only.
func (b *Ballot) AddVoter(caller, voter domain.Identity, now time.Time) error {
	if err := b.authorize(caller, OpAddVoter); err != nil {
		return err
	}
	if voter.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "voter identity cannot be empty")
	}
	if b.Voters[voter].IsRegistered {
		return ErrAlreadyRegistered
	}
	b.Voters[voter] = Voter{IsRegistered: true}
	b.touch(now)
	b.record(caller, now, VoterRegistered{VoterAddress: voter})
	return nil
}

// Voter returns the record of voter. Registered voters only, any phase.
func (b *Ballot) Voter(caller, voter domain.Identity) (Voter, error) {
	if err := b.requireVoter(caller); err != nil {
		return Voter{}, err
	}
	v, ok := b.Voters[voter]
	if !ok || !v.IsRegistered {
		return Voter{}, ErrVoterNotFound
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Proposal registry
// -----------------------------------------------------------------------------

// AddProposal appends a proposal and returns its index.
// Registered voters only, ProposalsRegistrationStarted only.
func (b *Ballot) AddProposal(caller domain.Identity, description string, now time.Time) (int, error) {
	if err := b.authorize(caller, OpAddProposal); err != nil {
		return 0, err
	}
	if strings.TrimSpace(description) == "" {
		return 0, ErrEmptyProposal
	}
	b.Proposals = append(b.Proposals, Proposal{Description: description})
	idx := len(b.Proposals) - 1
	b.touch(now)
	b.record(caller, now, ProposalRegistered{ProposalID: idx})
	return idx, nil
}

// Proposal returns the proposal at index. Registered voters only, any phase.
func (b *Ballot) Proposal(caller domain.Identity, index int) (Proposal, error) {
	if err := b.requireVoter(caller); err != nil {
		return Proposal{}, err
	}
	if index < 0 || index >= len(b.Proposals) {
		return Proposal{}, ErrProposalNotFound
	}
	return b.Proposals[index], nil
}

// ListProposals returns a copy of all proposals in index order.
func (b *Ballot) ListProposals(caller domain.Identity) ([]Proposal, error) {
	if err := b.requireVoter(caller); err != nil {
		return nil, err
	}
	return append([]Proposal{}, b.Proposals...), nil
}

// -----------------------------------------------------------------------------
// Workflow transitions
// -----------------------------------------------------------------------------

// StartProposalsRegistering opens proposal registration and seeds GENESIS.
func (b *Ballot) StartProposalsRegistering(caller domain.Identity, now time.Time) error {
	if err := b.advance(caller, OpStartProposalsRegistering, now); err != nil {
		return err
	}
	b.Proposals = append(b.Proposals, Proposal{Description: GenesisDescription})
	return nil
}

func (b *Ballot) EndProposalsRegistering(caller domain.Identity, now time.Time) error {
	return b.advance(caller, OpEndProposalsRegistering, now)
}

func (b *Ballot) StartVotingSession(caller domain.Identity, now time.Time) error {
	return b.advance(caller, OpStartVotingSession, now)
}

func (b *Ballot) EndVotingSession(caller domain.Identity, now time.Time) error {
	return b.advance(caller, OpEndVotingSession, now)
}

func (b *Ballot) advance(caller domain.Identity, op Operation, now time.Time) error {
	if err := b.authorize(caller, op); err != nil {
		return err
	}
	next, ok := op.Next(b.Status)
	if !ok || !b.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation, "operation "+string(op)+" does not advance the workflow")
	}
	prev := b.Status
	b.Status = next
	b.touch(now)
	b.record(caller, now, WorkflowStatusChange{PreviousStatus: prev, NewStatus: next})
	return nil
}

// -----------------------------------------------------------------------------
// Voting and tally
// -----------------------------------------------------------------------------

// SetVote records caller's single vote for proposalID.
// The already-voted check runs before the range check.
func (b *Ballot) SetVote(caller domain.Identity, proposalID int, now time.Time) error {
	if err := b.authorize(caller, OpSetVote); err != nil {
		return err
	}
	voter := b.Voters[caller]
	if voter.HasVoted {
		return ErrAlreadyVoted
	}
	if proposalID < 0 || proposalID >= len(b.Proposals) {
		return ErrProposalNotFound
	}
	id := proposalID
	voter.HasVoted = true
	voter.VotedProposalID = &id
	b.Voters[caller] = voter
	b.Proposals[proposalID].VoteCount++
	b.touch(now)
	b.record(caller, now, Voted{Voter: caller, ProposalID: proposalID})
	return nil
}

// TallyVotes computes and stores the winner, then moves to VotesTallied.
// It is the only way into VotesTallied.
func (b *Ballot) TallyVotes(caller domain.Identity, now time.Time) (int, error) {
	if err := b.advance(caller, OpTallyVotes, now); err != nil {
		return 0, err
	}
	b.WinningProposalID = Tally(b.Proposals)
	b.record(caller, now, VotesTalliedEvent{WinningProposalID: b.WinningProposalID})
	return b.WinningProposalID, nil
}

// Winner returns the stored result. Anyone may read it once votes are tallied.
func (b *Ballot) Winner() (int, error) {
	if b.Status != VotesTallied {
		return 0, ErrNotTallied
	}
	return b.WinningProposalID, nil
}

// TotalVotes sums vote counts across proposals.
func (b *Ballot) TotalVotes() int {
	total := 0
	for _, p := range b.Proposals {
		total += p.VoteCount
	}
	return total
}

func (b *Ballot) touch(now time.Time) {
	b.UpdatedAt = now
}
