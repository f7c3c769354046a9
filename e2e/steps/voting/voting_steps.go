package voting

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	ActAs(identity string)
	Caller() string
	SetBallotID(id string)
	BallotPath(suffix string) string
	POST(path string, body any) error
	GET(path string) error
	StatusCode() int
	Body() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers ballot workflow step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &votingSteps{tc: tc}

	// Setup steps
	ctx.Step(`^"([^"]*)" administers a new ballot$`, steps.administerNewBallot)
	ctx.Step(`^the voters "([^"]*)" are registered$`, steps.registerVoters)
	ctx.Step(`^proposal registration is open$`, steps.openProposals)
	ctx.Step(`^"([^"]*)" proposes "([^"]*)"$`, steps.proposeAs)
	ctx.Step(`^the voting session is open$`, steps.openVoting)
	ctx.Step(`^"([^"]*)" votes for proposal (\d+)$`, steps.voteAs)
	ctx.Step(`^the votes are tallied$`, steps.tally)

	// Request steps for the current caller
	ctx.Step(`^I register the voter "([^"]*)"$`, steps.registerVoter)
	ctx.Step(`^I propose "([^"]*)"$`, steps.propose)
	ctx.Step(`^I vote for proposal (\d+)$`, steps.vote)
	ctx.Step(`^I (start|end) (proposals registering|the voting session)$`, steps.transition)
	ctx.Step(`^I tally the votes$`, steps.tallyAsCaller)
	ctx.Step(`^I request the winning proposal$`, steps.requestWinner)

	// Assertions
	ctx.Step(`^the winning proposal should be (\d+)$`, steps.winnerShouldBe)
	ctx.Step(`^the workflow status should be "([^"]*)"$`, steps.statusShouldBe)
}

type votingSteps struct {
	tc    TestContext
	admin string
}

// as runs fn as identity and restores the previous caller.
func (s *votingSteps) as(identity string, fn func() error) error {
	prev := s.tc.Caller()
	s.tc.ActAs(identity)
	defer s.tc.ActAs(prev)
	return fn()
}

// expect fails unless the last response had the given status.
func (s *votingSteps) expect(status int, what string) error {
	if s.tc.StatusCode() != status {
		return fmt.Errorf("%s: expected status %d, got %d: %s", what, status, s.tc.StatusCode(), s.tc.Body())
	}
	return nil
}

func (s *votingSteps) administerNewBallot(_ context.Context, admin string) error {
	s.admin = admin
	return s.as(admin, func() error {
		if err := s.tc.POST("/ballots", nil); err != nil {
			return err
		}
		if err := s.expect(201, "create ballot"); err != nil {
			return err
		}
		id, err := s.tc.GetResponseField("id")
		if err != nil {
			return err
		}
		s.tc.SetBallotID(fmt.Sprint(id))
		return nil
	})
}

func (s *votingSteps) registerVoters(_ context.Context, list string) error {
	return s.as(s.admin, func() error {
		for _, voter := range strings.Split(list, ",") {
			if err := s.registerVoter(context.Background(), strings.TrimSpace(voter)); err != nil {
				return err
			}
			if err := s.expect(201, "register "+voter); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *votingSteps) openProposals(_ context.Context) error {
	return s.as(s.admin, func() error {
		if err := s.tc.POST(s.tc.BallotPath("/workflow/proposals-registering/start"), nil); err != nil {
			return err
		}
		return s.expect(204, "start proposals registering")
	})
}

func (s *votingSteps) openVoting(_ context.Context) error {
	return s.as(s.admin, func() error {
		for _, path := range []string{"/workflow/proposals-registering/end", "/workflow/voting-session/start"} {
			if err := s.tc.POST(s.tc.BallotPath(path), nil); err != nil {
				return err
			}
			if err := s.expect(204, path); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *votingSteps) proposeAs(ctx context.Context, voter, description string) error {
	return s.as(voter, func() error {
		if err := s.propose(ctx, description); err != nil {
			return err
		}
		return s.expect(201, "propose "+description)
	})
}

func (s *votingSteps) voteAs(ctx context.Context, voter string, proposalID int) error {
	return s.as(voter, func() error {
		if err := s.vote(ctx, proposalID); err != nil {
			return err
		}
		return s.expect(204, "vote by "+voter)
	})
}

func (s *votingSteps) tally(_ context.Context) error {
	return s.as(s.admin, func() error {
		if err := s.tc.POST(s.tc.BallotPath("/workflow/voting-session/end"), nil); err != nil {
			return err
		}
		if err := s.expect(204, "end voting session"); err != nil {
			return err
		}
		if err := s.tc.POST(s.tc.BallotPath("/tally"), nil); err != nil {
			return err
		}
		return s.expect(200, "tally votes")
	})
}

func (s *votingSteps) registerVoter(_ context.Context, voter string) error {
	return s.tc.POST(s.tc.BallotPath("/voters"), map[string]string{"identity": voter})
}

func (s *votingSteps) propose(_ context.Context, description string) error {
	return s.tc.POST(s.tc.BallotPath("/proposals"), map[string]string{"description": description})
}

func (s *votingSteps) vote(_ context.Context, proposalID int) error {
	return s.tc.POST(s.tc.BallotPath("/votes"), map[string]int{"proposal_id": proposalID})
}

func (s *votingSteps) transition(_ context.Context, verb, phase string) error {
	segment := "proposals-registering"
	if phase == "the voting session" {
		segment = "voting-session"
	}
	return s.tc.POST(s.tc.BallotPath("/workflow/"+segment+"/"+verb), nil)
}

func (s *votingSteps) tallyAsCaller(_ context.Context) error {
	return s.tc.POST(s.tc.BallotPath("/tally"), nil)
}

func (s *votingSteps) requestWinner(_ context.Context) error {
	return s.tc.GET(s.tc.BallotPath("/winner"))
}

func (s *votingSteps) winnerShouldBe(_ context.Context, expected int) error {
	if err := s.requestWinner(context.Background()); err != nil {
		return err
	}
	if err := s.expect(200, "winning proposal"); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("winning_proposal_id")
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != fmt.Sprint(expected) {
		return fmt.Errorf("expected winning proposal %d, got %s", expected, got)
	}
	return nil
}

func (s *votingSteps) statusShouldBe(_ context.Context, name string) error {
	if err := s.tc.GET(s.tc.BallotPath("/status")); err != nil {
		return err
	}
	if err := s.expect(200, "workflow status"); err != nil {
		return err
	}
	v, err := s.tc.GetResponseField("status_name")
	if err != nil {
		return err
	}
	if fmt.Sprint(v) != name {
		return fmt.Errorf("expected status %q, got %v", name, v)
	}
	return nil
}
