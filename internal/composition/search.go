package composition

import (
	"sort"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

// Pred returns the nearest composite events before event in which component
// takes part. Events whose trigger does not mention the component (or that
// have no trigger) are transparent: the search continues through them.
//
// The result is sorted and free of duplicates.
func Pred(event, component string, edges []device.Edge, triggers map[string]device.Rule) []string {
	return search(event, component, edges, triggers, func(e device.Edge) (string, string) {
		return e.To, e.From
	})
}

// Succ is the mirror of Pred: the nearest composite events after event in
// which component takes part.
func Succ(event, component string, edges []device.Edge, triggers map[string]device.Rule) []string {
	return search(event, component, edges, triggers, func(e device.Edge) (string, string) {
		return e.From, e.To
	})
}

// search walks the behaviour graph from start. orient maps an edge to
// (near, far): the endpoint that must match the current event, and the
// neighbour to inspect.
func search(start, component string, edges []device.Edge, triggers map[string]device.Rule,
	orient func(device.Edge) (string, string)) []string {
	found := make(map[string]struct{})
	visited := map[string]struct{}{start: {}}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range edges {
			near, far := orient(e)
			if near != current {
				continue
			}
			if mentions(triggers[far], component) {
				found[far] = struct{}{}
				continue
			}
			if _, ok := visited[far]; ok {
				continue
			}
			visited[far] = struct{}{}
			queue = append(queue, far)
		}
	}

	result := make([]string, 0, len(found))
	for e := range found {
		result = append(result, e)
	}
	sort.Strings(result)
	return result
}
