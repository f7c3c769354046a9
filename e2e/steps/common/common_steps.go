package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	ActAs(identity string)
	POST(path string, body any) error
	GET(path string) error
	StatusCode() int
	Body() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers caller selection and generic response assertions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am "([^"]*)"$`, steps.actAs)
	ctx.Step(`^I am anonymous$`, steps.anonymous)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the request should be rejected with "([^"]*)"$`, steps.requestShouldBeRejectedWith)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should equal (\d+)$`, steps.responseFieldShouldEqualInt)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) actAs(_ context.Context, identity string) error {
	s.tc.ActAs(identity)
	return nil
}

func (s *commonSteps) anonymous(_ context.Context) error {
	s.tc.ActAs("")
	return nil
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, status int) error {
	if got := s.tc.StatusCode(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) requestShouldBeRejectedWith(_ context.Context, message string) error {
	if s.tc.StatusCode() < 400 {
		return fmt.Errorf("expected rejection, got status %d: %s", s.tc.StatusCode(), s.tc.Body())
	}
	return s.responseFieldShouldEqual(context.Background(), "error_description", message)
}

func (s *commonSteps) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqualInt(ctx context.Context, field string, expected int) error {
	return s.responseFieldShouldEqual(ctx, field, strconv.Itoa(expected))
}
