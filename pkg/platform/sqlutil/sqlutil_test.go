package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := `INSERT INTO outbox (id, payload) VALUES ($1, $2)`
	assert.Equal(t, q, Postgres.Rebind(q))
	assert.Equal(t, `INSERT INTO outbox (id, payload) VALUES (?, ?)`, SQLite.Rebind(q))
	assert.Equal(t, `SELECT 1 WHERE a = ? AND b = ?`, SQLite.Rebind(`SELECT 1 WHERE a = $10 AND b = $11`))
}
