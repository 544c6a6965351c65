package composition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

func edges(pairs ...string) []device.Edge {
	out := make([]device.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, device.Edge{From: pairs[i], To: pairs[i+1]})
	}
	return out
}

func TestPred(t *testing.T) {
	graph := edges("begin", "e1", "e1", "e2", "e2", "e3", "e3", "e1")
	triggers := map[string]device.Rule{
		"e1": device.Seq(on("ledA", "on"), on("ledB", "off")),
	}

	assert.Equal(t, []string{"e1"}, Pred("e2", "ledA", graph, triggers))
	assert.Equal(t, []string{"e1"}, Pred("e2", "ledB", graph, triggers))
	// e2, e3 and begin are transparent and the cycle must not loop
	assert.Equal(t, []string{"e1"}, Pred("e1", "ledA", graph, triggers))
	assert.Empty(t, Pred("e2", "t", graph, triggers))
	assert.Empty(t, Pred("begin", "ledA", graph, triggers))
}

func TestSucc(t *testing.T) {
	graph := edges("begin", "e1", "e1", "e2", "e2", "e3", "e3", "e1")
	triggers := map[string]device.Rule{
		"e1": device.Seq(on("ledA", "on"), on("ledB", "off")),
		"e3": on("ledB", "on"),
	}

	assert.Equal(t, []string{"e3"}, Succ("e1", "ledB", graph, triggers))
	assert.Equal(t, []string{"e1"}, Succ("e1", "ledA", graph, triggers))
	assert.Equal(t, []string{"e1"}, Succ("begin", "ledA", graph, triggers))
	assert.Empty(t, Succ("e1", "t", graph, triggers))
}

func TestPredBranches(t *testing.T) {
	// two incoming paths, one of them through a transparent event
	graph := edges(
		"begin", "a",
		"begin", "b",
		"a", "m",
		"b", "skip",
		"skip", "m",
	)
	triggers := map[string]device.Rule{
		"a":    on("c", "x"),
		"b":    on("c", "y"),
		"skip": on("other", "z"),
		"m":    on("c", "w"),
	}

	assert.Equal(t, []string{"a", "b"}, Pred("m", "c", graph, triggers))
	assert.Equal(t, []string{"m"}, Succ("b", "c", graph, triggers))
	assert.Equal(t, []string{"a", "b"}, Succ("begin", "c", graph, triggers))
}
