package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphEdge_Key(t *testing.T) {
	t.Parallel()

	a := GraphEdge{Source: "US1", Target: "US2", Type: EdgeCites}
	b := GraphEdge{Source: "US1", Target: "US2", Type: EdgeCites}
	c := GraphEdge{Source: "US1", Target: "US2", Type: EdgeCitedBy}
	d := GraphEdge{Source: "US2", Target: "US1", Type: EdgeCites}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key(), "same endpoints, different edge type")
	assert.NotEqual(t, a.Key(), d.Key(), "reversed endpoints")
}
