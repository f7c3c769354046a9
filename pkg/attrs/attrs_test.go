package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestToMap(t *testing.T) {
	m := ToMap([]any{"voter", label("alice"), "proposal_id", 2, 7, "seven", "proposal_id", 3, "dangling"})
	assert.Equal(t, map[string]any{
		"voter":       "label:alice",
		"proposal_id": 3,
		"7":           "seven",
	}, m)
}
