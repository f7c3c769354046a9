package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
)

const (
	admin   domain.Identity = "admin"
	alice   domain.Identity = "alice"
	bob     domain.Identity = "bob"
	carol   domain.Identity = "carol"
	mallory domain.Identity = "mallory"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newBallot(t *testing.T) *Ballot {
	t.Helper()
	b, err := NewBallot(domain.NewBallotID(), admin, now)
	require.NoError(t, err)
	b.PullEvents()
	return b
}

// ballotInVoting registers voters, adds proposals "A" and "B" (indexes 1, 2)
// and opens the voting session.
func ballotInVoting(t *testing.T, voters ...domain.Identity) *Ballot {
	t.Helper()
	b := newBallot(t)
	for _, v := range voters {
		require.NoError(t, b.AddVoter(admin, v, now))
	}
	require.NoError(t, b.StartProposalsRegistering(admin, now))
	_, err := b.AddProposal(voters[0], "A", now)
	require.NoError(t, err)
	_, err = b.AddProposal(voters[0], "B", now)
	require.NoError(t, err)
	require.NoError(t, b.EndProposalsRegistering(admin, now))
	require.NoError(t, b.StartVotingSession(admin, now))
	b.PullEvents()
	return b
}

func requireRejected(t *testing.T, err error, code dErrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, code), "expected code %s, got %v", code, err)
	assert.Equal(t, msg, dErrors.MessageOf(err))
}

func TestNewBallot(t *testing.T) {
	b, err := NewBallot(domain.NewBallotID(), admin, now)
	require.NoError(t, err)
	assert.Equal(t, RegisteringVoters, b.Status)
	assert.Equal(t, admin, b.Administrator)
	assert.Empty(t, b.Proposals)

	events := b.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, BallotCreated{Administrator: admin}, events[0].Event)
	assert.False(t, events[0].ID.IsNil())

	_, err = NewBallot(domain.NewBallotID(), "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewBallot(domain.BallotID{}, admin, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestRecordedEventsHaveDistinctIDs(t *testing.T) {
	b := newBallot(t)
	require.NoError(t, b.AddVoter(admin, alice, now))
	require.NoError(t, b.AddVoter(admin, bob, now))

	events := b.PullEvents()
	require.Len(t, events, 2)
	assert.False(t, events[0].ID.IsNil())
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestAddVoter(t *testing.T) {
	t.Run("registers and emits VoterRegistered", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))

		assert.True(t, b.IsVoter(alice))
		events := b.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, VoterRegistered{VoterAddress: alice}, events[0].Event)
		assert.Equal(t, admin, events[0].Actor)
	})

	t.Run("duplicate is rejected", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		requireRejected(t, b.AddVoter(admin, alice, now), dErrors.CodeValidation, "Already registered")
	})

	t.Run("non administrator is rejected", func(t *testing.T) {
		b := newBallot(t)
		requireRejected(t, b.AddVoter(alice, bob, now), dErrors.CodeForbidden, "Ownable: caller is not the owner")
		assert.False(t, b.IsVoter(bob))
	})

	t.Run("closed after registration phase", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		requireRejected(t, b.AddVoter(admin, alice, now), dErrors.CodeInvalidState, "Voters registration is not open yet")
	})

	t.Run("role check runs before phase check", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		requireRejected(t, b.AddVoter(mallory, alice, now), dErrors.CodeForbidden, "Ownable: caller is not the owner")
	})
}

func TestGetVoter(t *testing.T) {
	b := newBallot(t)
	require.NoError(t, b.AddVoter(admin, alice, now))
	require.NoError(t, b.AddVoter(admin, bob, now))

	v, err := b.Voter(alice, bob)
	require.NoError(t, err)
	assert.True(t, v.IsRegistered)
	assert.False(t, v.HasVoted)
	assert.Nil(t, v.VotedProposalID)

	_, err = b.Voter(alice, carol)
	requireRejected(t, err, dErrors.CodeNotFound, "Voter not found")

	_, err = b.Voter(admin, alice)
	requireRejected(t, err, dErrors.CodeForbidden, "You're not a voter")
}

func TestProposalRegistry(t *testing.T) {
	t.Run("not allowed before registration opens", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		_, err := b.AddProposal(alice, "Pizza", now)
		requireRejected(t, err, dErrors.CodeInvalidState, "Proposals are not allowed yet")
	})

	t.Run("genesis is seeded at index 0", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		require.NoError(t, b.StartProposalsRegistering(admin, now))

		p, err := b.Proposal(alice, 0)
		require.NoError(t, err)
		assert.Equal(t, GenesisDescription, p.Description)
		assert.Zero(t, p.VoteCount)
	})

	t.Run("indexes are assigned in order", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		b.PullEvents()

		first, err := b.AddProposal(alice, "Pizza", now)
		require.NoError(t, err)
		second, err := b.AddProposal(alice, "Pizza", now)
		require.NoError(t, err)
		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second, "duplicate descriptions are allowed")

		events := b.PullEvents()
		require.Len(t, events, 2)
		assert.Equal(t, ProposalRegistered{ProposalID: 1}, events[0].Event)

		all, err := b.ListProposals(alice)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		for _, d := range []string{"", "   "} {
			_, err := b.AddProposal(alice, d, now)
			requireRejected(t, err, dErrors.CodeValidation, "Vous ne pouvez pas ne rien proposer")
		}
		assert.Len(t, b.Proposals, 1)
	})

	t.Run("non voter cannot propose or read", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		_, err := b.AddProposal(admin, "Pizza", now)
		requireRejected(t, err, dErrors.CodeForbidden, "You're not a voter")
		_, err = b.Proposal(mallory, 0)
		requireRejected(t, err, dErrors.CodeForbidden, "You're not a voter")
	})

	t.Run("out of range read", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		for _, idx := range []int{-1, 1, 99} {
			_, err := b.Proposal(alice, idx)
			requireRejected(t, err, dErrors.CodeNotFound, "Proposal not found")
		}
	})
}

func TestWorkflowTransitions(t *testing.T) {
	b := newBallot(t)
	require.NoError(t, b.AddVoter(admin, alice, now))
	b.PullEvents()

	steps := []struct {
		name string
		run  func() error
		from WorkflowStatus
		to   WorkflowStatus
	}{
		{"start proposals", func() error { return b.StartProposalsRegistering(admin, now) }, RegisteringVoters, ProposalsRegistrationStarted},
		{"end proposals", func() error { return b.EndProposalsRegistering(admin, now) }, ProposalsRegistrationStarted, ProposalsRegistrationEnded},
		{"start voting", func() error { return b.StartVotingSession(admin, now) }, ProposalsRegistrationEnded, VotingSessionStarted},
		{"end voting", func() error { return b.EndVotingSession(admin, now) }, VotingSessionStarted, VotingSessionEnded},
		{"tally", func() error { _, err := b.TallyVotes(admin, now); return err }, VotingSessionEnded, VotesTallied},
	}
	for _, step := range steps {
		require.NoError(t, step.run(), step.name)
		assert.Equal(t, step.to, b.Status, step.name)
		events := b.PullEvents()
		require.NotEmpty(t, events, step.name)
		assert.Equal(t, WorkflowStatusChange{PreviousStatus: step.from, NewStatus: step.to}, events[0].Event, step.name)
	}
}

func TestWorkflowRejectsOutOfOrderTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(b *Ballot) error
		msg  string
	}{
		{"end proposals before start", func(b *Ballot) error { return b.EndProposalsRegistering(admin, now) }, "Registering proposals havent started yet"},
		{"start voting before proposals end", func(b *Ballot) error { return b.StartVotingSession(admin, now) }, "Registering proposals phase is not finished"},
		{"end voting before start", func(b *Ballot) error { return b.EndVotingSession(admin, now) }, "Voting session havent started yet"},
		{"tally before voting ends", func(b *Ballot) error { _, err := b.TallyVotes(admin, now); return err }, "Current status is not voting session ended"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBallot(t)
			requireRejected(t, tt.run(b), dErrors.CodeInvalidState, tt.msg)
			assert.Equal(t, RegisteringVoters, b.Status)
			assert.Empty(t, b.PullEvents())
		})
	}

	t.Run("start proposals twice", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.StartProposalsRegistering(admin, now))
		requireRejected(t, b.StartProposalsRegistering(admin, now), dErrors.CodeInvalidState, "Registering proposals cant be started now")
		assert.Len(t, b.Proposals, 1, "genesis is appended exactly once")
	})

	t.Run("transitions are administrator only", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		requireRejected(t, b.StartProposalsRegistering(alice, now), dErrors.CodeForbidden, "Ownable: caller is not the owner")
	})
}

func TestSetVote(t *testing.T) {
	t.Run("records the vote", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		require.NoError(t, b.SetVote(alice, 2, now))

		v, err := b.Voter(alice, alice)
		require.NoError(t, err)
		assert.True(t, v.HasVoted)
		require.NotNil(t, v.VotedProposalID)
		assert.Equal(t, 2, *v.VotedProposalID)
		assert.Equal(t, 1, b.Proposals[2].VoteCount)

		events := b.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, Voted{Voter: alice, ProposalID: 2}, events[0].Event)
	})

	t.Run("second vote is rejected", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		require.NoError(t, b.SetVote(alice, 1, now))
		requireRejected(t, b.SetVote(alice, 2, now), dErrors.CodeValidation, "You have already voted")
		assert.Equal(t, 1, b.TotalVotes())
	})

	t.Run("already voted wins over out of range", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		require.NoError(t, b.SetVote(alice, 1, now))
		requireRejected(t, b.SetVote(alice, 99, now), dErrors.CodeValidation, "You have already voted")
	})

	t.Run("unknown proposal", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		requireRejected(t, b.SetVote(alice, 3, now), dErrors.CodeNotFound, "Proposal not found")
		assert.False(t, b.Voters[alice].HasVoted)
	})

	t.Run("session not started", func(t *testing.T) {
		b := newBallot(t)
		require.NoError(t, b.AddVoter(admin, alice, now))
		requireRejected(t, b.SetVote(alice, 0, now), dErrors.CodeInvalidState, "Voting session havent started yet")
	})

	t.Run("non voter", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		requireRejected(t, b.SetVote(admin, 1, now), dErrors.CodeForbidden, "You're not a voter")
	})

	t.Run("genesis can receive votes", func(t *testing.T) {
		b := ballotInVoting(t, alice)
		require.NoError(t, b.SetVote(alice, 0, now))
		assert.Equal(t, 1, b.Proposals[0].VoteCount)
	})
}

func TestTallyScenarios(t *testing.T) {
	tests := []struct {
		name   string
		votes  map[domain.Identity]int
		winner int
	}{
		{"clear majority", map[domain.Identity]int{alice: 2, bob: 2, carol: 2}, 2},
		{"no votes elects genesis", map[domain.Identity]int{}, 0},
		{"tie goes to lowest index", map[domain.Identity]int{alice: 1, bob: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ballotInVoting(t, alice, bob, carol)
			for voter, proposal := range tt.votes {
				require.NoError(t, b.SetVote(voter, proposal, now))
			}
			require.NoError(t, b.EndVotingSession(admin, now))
			b.PullEvents()

			winner, err := b.TallyVotes(admin, now)
			require.NoError(t, err)
			assert.Equal(t, tt.winner, winner)
			assert.Equal(t, VotesTallied, b.Status)

			stored, err := b.Winner()
			require.NoError(t, err)
			assert.Equal(t, tt.winner, stored)

			events := b.PullEvents()
			require.Len(t, events, 2)
			assert.Equal(t, VotesTalliedEvent{WinningProposalID: tt.winner}, events[1].Event)
		})
	}
}

func TestWinnerBeforeTally(t *testing.T) {
	b := ballotInVoting(t, alice)
	_, err := b.Winner()
	requireRejected(t, err, dErrors.CodeInvalidState, "Votes have not been tallied yet")
}

func TestTally(t *testing.T) {
	assert.Equal(t, 0, Tally(nil))
	assert.Equal(t, 0, Tally([]Proposal{{VoteCount: 3}, {VoteCount: 3}}))
	assert.Equal(t, 2, Tally([]Proposal{{VoteCount: 1}, {VoteCount: 0}, {VoteCount: 4}, {VoteCount: 4}}))
}

func TestCloneIsIndependent(t *testing.T) {
	b := ballotInVoting(t, alice, bob)
	require.NoError(t, b.SetVote(alice, 1, now))

	c := b.Clone()
	require.NoError(t, c.SetVote(bob, 2, now))
	*c.Voters[alice].VotedProposalID = 2

	assert.False(t, b.Voters[bob].HasVoted)
	assert.Zero(t, b.Proposals[2].VoteCount)
	assert.Equal(t, 1, *b.Voters[alice].VotedProposalID)
	assert.Len(t, c.PullEvents(), 1, "clone starts with no pending events")
}
