package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries the HTTP client, the caller identities and the last
// response across the steps of one scenario.
type TestContext struct {
	baseURL    string
	signingKey []byte
	issuer     string
	audience   string
	client     *http.Client

	caller       string
	ballotID     string
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]any
}

// NewTestContext reads the server location and token settings from the
// environment, defaulting to a local server with the development key.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(getEnv("E2E_BASE_URL", "http://localhost:8080"), "/"),
		signingKey: []byte(getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     getEnv("JWT_ISSUER", "alyra"),
		audience:   getEnv("JWT_AUDIENCE", "alyra-voting"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.caller = ""
	tc.ballotID = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
}

func (tc *TestContext) ActAs(identity string) { tc.caller = identity }

func (tc *TestContext) Caller() string { return tc.caller }

func (tc *TestContext) SetBallotID(id string) { tc.ballotID = id }

func (tc *TestContext) BallotPath(suffix string) string {
	return "/ballots/" + tc.ballotID + suffix
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) StatusCode() int { return tc.lastStatus }

func (tc *TestContext) Body() []byte { return tc.lastBody }

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("last response was not a JSON object: %s", tc.lastBody)
	}
	v, ok := tc.lastResponse[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.caller != "" {
		token, err := tc.token(tc.caller)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		var obj map[string]any
		if json.Unmarshal(tc.lastBody, &obj) == nil {
			tc.lastResponse = obj
		}
	}
	return nil
}

func (tc *TestContext) token(identity string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"identity": identity,
		"sub":      identity,
		"iss":      tc.issuer,
		"aud":      []string{tc.audience},
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
