package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	jwttoken "alyra/internal/jwt_token"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestIssueToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key-with-enough-bytes")
	t.Setenv("JWT_ISSUER", "alyra-test")
	t.Setenv("JWT_AUDIENCE", "alyra-voting")
	t.Setenv("STORE_BACKEND", "memory")

	token, err := execute(t, "issue", "--identity", " Alice ")
	require.NoError(t, err)

	svc := jwttoken.NewJWTService("test-signing-key-with-enough-bytes", "alyra-test", "alyra-voting")
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Identity)
}

func TestIssueRequiresIdentity(t *testing.T) {
	_, err := execute(t, "issue")
	assert.Error(t, err)
}

func TestHashAdmin(t *testing.T) {
	hash, err := execute(t, "hash-admin", "--cost", "4", "ops-secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("ops-secret")))
}
