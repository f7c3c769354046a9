package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"alyra/internal/voting/metrics"
	"alyra/internal/voting/models"
	"alyra/internal/voting/store"
	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
	"alyra/pkg/platform/audit"
	"alyra/pkg/platform/audit/publisher"
	auditmemory "alyra/pkg/platform/audit/store/memory"
	pkgtestutil "alyra/pkg/testutil"
)

const (
	admin   domain.Identity = "admin"
	alice   domain.Identity = "alice"
	bob     domain.Identity = "bob"
	carol   domain.Identity = "carol"
	mallory domain.Identity = "mallory"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []models.Envelope
	err    error
}

func (o *recordingObserver) Notify(_ context.Context, env models.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, env)
	return o.err
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingAuditStore) ListByBallot(context.Context, domain.BallotID) ([]audit.Event, error) {
	return nil, nil
}

type ServiceSuite struct {
	suite.Suite
	store    *store.InMemory
	audit    *auditmemory.InMemoryStore
	metrics  *metrics.Metrics
	observer *recordingObserver
	service  *Service
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.observer = &recordingObserver{}
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
		WithObserver(s.observer),
	)
}

func (s *ServiceSuite) as(identity domain.Identity) context.Context {
	return pkgtestutil.CallerContext(identity, s.now)
}

func (s *ServiceSuite) requireRejected(err error, code dErrors.Code, msg string) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), "error: %v", err)
	s.Equal(msg, dErrors.MessageOf(err))
}

func (s *ServiceSuite) createBallot() domain.BallotID {
	b, err := s.service.CreateBallot(s.as(admin))
	s.Require().NoError(err)
	return b.ID
}

// openVoting registers voters, adds proposals "A" and "B" (indexes 1 and 2)
// and starts the voting session.
func (s *ServiceSuite) openVoting(voters ...domain.Identity) domain.BallotID {
	id := s.createBallot()
	for _, v := range voters {
		s.Require().NoError(s.service.AddVoter(s.as(admin), id, v))
	}
	s.Require().NoError(s.service.StartProposalsRegistering(s.as(admin), id))
	for _, desc := range []string{"A", "B"} {
		_, err := s.service.AddProposal(s.as(voters[0]), id, desc)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.service.EndProposalsRegistering(s.as(admin), id))
	s.Require().NoError(s.service.StartVotingSession(s.as(admin), id))
	return id
}

func (s *ServiceSuite) closeAndTally(id domain.BallotID) int {
	s.Require().NoError(s.service.EndVotingSession(s.as(admin), id))
	winner, err := s.service.TallyVotes(s.as(admin), id)
	s.Require().NoError(err)
	return winner
}

func (s *ServiceSuite) auditActions(id domain.BallotID) []string {
	events, err := s.audit.ListByBallot(context.Background(), id)
	s.Require().NoError(err)
	actions := make([]string, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}
	return actions
}

func (s *ServiceSuite) TestCreateBallot() {
	b, err := s.service.CreateBallot(s.as(admin))
	s.Require().NoError(err)
	s.Equal(admin, b.Administrator)
	s.Equal(models.RegisteringVoters, b.Status)

	status, err := s.service.GetWorkflowStatus(context.Background(), b.ID)
	s.Require().NoError(err)
	s.Equal(models.RegisteringVoters, status)
	s.Equal([]string{"ballot_created"}, s.auditActions(b.ID))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BallotsCreated))
}

func (s *ServiceSuite) TestObserversSeeAuditTrailEventIDs() {
	b, err := s.service.CreateBallot(s.as(admin))
	s.Require().NoError(err)
	s.Require().NoError(s.service.AddVoter(s.as(admin), b.ID, alice))

	events, err := s.audit.ListByBallot(context.Background(), b.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Require().Equal(2, s.observer.count())
	for i, e := range events {
		s.Equal(e.ID, s.observer.events[i].ID, "event %d", i)
	}
}

func (s *ServiceSuite) TestCreateBallotRequiresIdentity() {
	_, err := s.service.CreateBallot(context.Background())
	s.requireRejected(err, dErrors.CodeUnauthorized, "caller identity is required")
}

func (s *ServiceSuite) TestUnknownBallot() {
	err := s.service.AddVoter(s.as(admin), domain.NewBallotID(), alice)
	s.requireRejected(err, dErrors.CodeNotFound, "ballot not found")

	_, err = s.service.GetWorkflowStatus(context.Background(), domain.NewBallotID())
	s.requireRejected(err, dErrors.CodeNotFound, "ballot not found")

	_, err = s.service.ListEvents(context.Background(), domain.NewBallotID())
	s.requireRejected(err, dErrors.CodeNotFound, "ballot not found")
}

func (s *ServiceSuite) TestMutationRequiresIdentity() {
	id := s.createBallot()
	err := s.service.AddVoter(context.Background(), id, alice)
	s.requireRejected(err, dErrors.CodeUnauthorized, "caller identity is required")
}

func (s *ServiceSuite) TestMajorityWins() {
	id := s.openVoting(alice, bob, carol)
	s.Require().NoError(s.service.SetVote(s.as(alice), id, 1))
	s.Require().NoError(s.service.SetVote(s.as(bob), id, 1))
	s.Require().NoError(s.service.SetVote(s.as(carol), id, 2))

	s.Equal(1, s.closeAndTally(id))
	winner, err := s.service.WinningProposalID(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(1, winner)

	status, err := s.service.GetWorkflowStatus(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(models.VotesTallied, status)
	s.Equal(3.0, testutil.ToFloat64(s.metrics.VotesCast))
}

func (s *ServiceSuite) TestTieGoesToLowestIndex() {
	id := s.openVoting(alice, bob)
	s.Require().NoError(s.service.SetVote(s.as(alice), id, 2))
	s.Require().NoError(s.service.SetVote(s.as(bob), id, 1))
	s.Equal(1, s.closeAndTally(id))
}

func (s *ServiceSuite) TestNoVotesElectsGenesis() {
	id := s.openVoting(alice)
	s.Equal(0, s.closeAndTally(id))

	p, err := s.service.GetOneProposal(s.as(alice), id, 0)
	s.Require().NoError(err)
	s.Equal(models.GenesisDescription, p.Description)
}

func (s *ServiceSuite) TestFullAuditTrail() {
	id := s.openVoting(alice)
	s.Require().NoError(s.service.SetVote(s.as(alice), id, 2))
	s.closeAndTally(id)

	s.Equal([]string{
		"ballot_created",
		"voter_registered",
		"workflow_status_change",
		"proposal_registered",
		"proposal_registered",
		"workflow_status_change",
		"workflow_status_change",
		"voted",
		"workflow_status_change",
		"workflow_status_change",
		"votes_tallied",
	}, s.auditActions(id))

	events, err := s.service.ListEvents(context.Background(), id)
	s.Require().NoError(err)
	last := events[len(events)-1]
	s.JSONEq(`{"winning_proposal_id":2}`, string(last.Attributes))
	s.Equal(admin, last.Actor)
	s.Equal(len(events), s.observer.count())
}

func (s *ServiceSuite) TestRejectionLeavesBallotUntouched() {
	id := s.createBallot()
	before := len(s.auditActions(id))
	notified := s.observer.count()

	err := s.service.AddVoter(s.as(mallory), id, mallory)
	s.requireRejected(err, dErrors.CodeForbidden, "Ownable: caller is not the owner")

	err = s.service.EndVotingSession(s.as(admin), id)
	s.requireRejected(err, dErrors.CodeInvalidState, "Voting session havent started yet")

	b, err := s.service.GetBallot(context.Background(), id)
	s.Require().NoError(err)
	s.Empty(b.Voters)
	s.Equal(models.RegisteringVoters, b.Status)
	s.Len(s.auditActions(id), before)
	s.Equal(notified, s.observer.count())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("addVoter", "forbidden")))
}

func (s *ServiceSuite) TestVoterRules() {
	id := s.openVoting(alice, bob)

	s.Require().NoError(s.service.SetVote(s.as(alice), id, 1))
	err := s.service.SetVote(s.as(alice), id, 99)
	s.requireRejected(err, dErrors.CodeValidation, "You have already voted")

	err = s.service.SetVote(s.as(bob), id, 3)
	s.requireRejected(err, dErrors.CodeNotFound, "Proposal not found")

	err = s.service.SetVote(s.as(mallory), id, 1)
	s.requireRejected(err, dErrors.CodeForbidden, "You're not a voter")

	v, err := s.service.GetVoter(s.as(bob), id, alice)
	s.Require().NoError(err)
	s.True(v.HasVoted)
	s.Require().NotNil(v.VotedProposalID)
	s.Equal(1, *v.VotedProposalID)

	_, err = s.service.GetVoter(s.as(bob), id, mallory)
	s.requireRejected(err, dErrors.CodeNotFound, "Voter not found")

	_, err = s.service.GetVoter(s.as(mallory), id, alice)
	s.requireRejected(err, dErrors.CodeForbidden, "You're not a voter")

	_, err = s.service.ListProposals(context.Background(), id)
	s.requireRejected(err, dErrors.CodeUnauthorized, "caller identity is required")
}

func (s *ServiceSuite) TestProposalRules() {
	id := s.createBallot()
	s.Require().NoError(s.service.AddVoter(s.as(admin), id, alice))

	_, err := s.service.AddProposal(s.as(alice), id, "too early")
	s.requireRejected(err, dErrors.CodeInvalidState, "Proposals are not allowed yet")

	s.Require().NoError(s.service.StartProposalsRegistering(s.as(admin), id))
	_, err = s.service.AddProposal(s.as(alice), id, "   ")
	s.requireRejected(err, dErrors.CodeValidation, "Vous ne pouvez pas ne rien proposer")

	idx, err := s.service.AddProposal(s.as(alice), id, "plant trees")
	s.Require().NoError(err)
	s.Equal(1, idx)

	proposals, err := s.service.ListProposals(s.as(alice), id)
	s.Require().NoError(err)
	s.Require().Len(proposals, 2)
	s.Equal("plant trees", proposals[1].Description)
}

func (s *ServiceSuite) TestWinnerBeforeTally() {
	id := s.openVoting(alice)
	_, err := s.service.WinningProposalID(context.Background(), id)
	s.requireRejected(err, dErrors.CodeInvalidState, "Votes have not been tallied yet")
}

func (s *ServiceSuite) TestAuditFailureAbortsOperation() {
	id := s.createBallot()
	failing := New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(failingAuditStore{})),
	)

	err := failing.AddVoter(s.as(admin), id, alice)
	s.requireRejected(err, dErrors.CodeInternal, "failed to record ballot event")

	b, err := s.service.GetBallot(context.Background(), id)
	s.Require().NoError(err)
	s.False(b.IsVoter(alice))
}

func (s *ServiceSuite) TestObserverFailureDoesNotFailOperation() {
	s.observer.err = errors.New("broker down")
	id := s.createBallot()
	s.NoError(s.service.AddVoter(s.as(admin), id, alice))
}

func (s *ServiceSuite) TestConcurrentVotesAreSerialised() {
	voters := make([]domain.Identity, 30)
	for i := range voters {
		voters[i] = domain.Identity(fmt.Sprintf("voter-%02d", i))
	}
	id := s.openVoting(voters...)

	var wg sync.WaitGroup
	for i, v := range voters {
		wg.Add(1)
		go func(v domain.Identity, proposal int) {
			defer wg.Done()
			s.NoError(s.service.SetVote(s.as(v), id, proposal))
		}(v, 1+i%2)
	}
	wg.Wait()

	b, err := s.service.GetBallot(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(len(voters), b.TotalVotes())
	s.Equal(15, b.Proposals[1].VoteCount)
	s.Equal(15, b.Proposals[2].VoteCount)
}

func (s *ServiceSuite) TestListBallots() {
	first := s.createBallot()
	s.now = s.now.Add(time.Minute)
	second := s.createBallot()

	ballots, err := s.service.ListBallots(context.Background())
	s.Require().NoError(err)
	s.Require().Len(ballots, 2)
	s.Equal(first, ballots[0].ID)
	s.Equal(second, ballots[1].ID)
}
