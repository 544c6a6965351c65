package composition

import (
	"fmt"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

// Devices returns the names of the components a rule mentions.
func Devices(r device.Rule) map[string]struct{} {
	set := make(map[string]struct{})
	for _, leaf := range device.Leaves(r) {
		set[leaf.Component] = struct{}{}
	}
	return set
}

// mentions reports whether component occurs in r.
func mentions(r device.Rule, component string) bool {
	_, ok := Devices(r)[component]
	return ok
}

// Restrict projects a rule onto one component. It returns nil when the
// component does not occur in the rule. Groups are dropped; a sequence or
// choice with a single surviving side collapses to that side.
//
// Concurrent rules mentioning the component cannot be projected and yield
// ErrUnsupportedRule.
func Restrict(component string, r device.Rule) (device.Rule, error) {
	switch n := r.(type) {
	case nil:
		return nil, nil
	case device.EventRule:
		if n.Component != component {
			return nil, nil
		}
		return device.EventRule{Component: component, Event: n.Event}, nil
	case device.GroupRule:
		return Restrict(component, n.Inner)
	case device.SequenceRule:
		return restrictPair(component, n.Left, n.Right, func(l, r device.Rule) device.Rule {
			return device.SequenceRule{Left: l, Right: r}
		})
	case device.ChoiceRule:
		return restrictPair(component, n.Left, n.Right, func(l, r device.Rule) device.Rule {
			return device.ChoiceRule{Left: l, Right: r}
		})
	case device.AndRule:
		if mentions(n, component) {
			return nil, fmt.Errorf("%w: cannot restrict %s to component %s", ErrUnsupportedRule, n, component)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedRule, r)
	}
}

func restrictPair(component string, left, right device.Rule, join func(l, r device.Rule) device.Rule) (device.Rule, error) {
	l, err := Restrict(component, left)
	if err != nil {
		return nil, err
	}
	r, err := Restrict(component, right)
	if err != nil {
		return nil, err
	}

	switch {
	case l != nil && r != nil:
		return join(l, r), nil
	case l != nil:
		return l, nil
	default:
		return r, nil
	}
}
