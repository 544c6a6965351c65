package composition

import (
	"fmt"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

// IsValid decides whether the restricted rule right may follow the
// restricted rule left, given the component's own behaviours.
//
//   - two events: the component must declare the transition between them
//   - left sequence l1 ; l2: l1 before l2, and l2 before right
//   - right sequence r1 ; r2: left before r1, and r1 before r2
//   - left choice l1 + l2: both l1 and l2 before right
//   - right choice r1 + r2: left before both r1 and r2
//
// Every case that applies must hold. Returns ErrInvalidReduction naming the
// first transition the component does not declare.
func IsValid(component string, left, right device.Rule, behaviours device.EdgeSet) error {
	left, right = unwrap(left), unwrap(right)

	if l, ok := left.(device.EventRule); ok {
		if r, ok := right.(device.EventRule); ok {
			if !behaviours.Has(l.Event, r.Event) {
				return fmt.Errorf("%w: %s.%s -> %s.%s", ErrInvalidReduction, component, l.Event, component, r.Event)
			}
			return nil
		}
	}

	matched := false
	if l, ok := left.(device.SequenceRule); ok {
		matched = true
		if err := IsValid(component, l.Left, l.Right, behaviours); err != nil {
			return err
		}
		if err := IsValid(component, l.Right, right, behaviours); err != nil {
			return err
		}
	}
	if r, ok := right.(device.SequenceRule); ok {
		matched = true
		if err := IsValid(component, left, r.Left, behaviours); err != nil {
			return err
		}
		if err := IsValid(component, r.Left, r.Right, behaviours); err != nil {
			return err
		}
	}
	if l, ok := left.(device.ChoiceRule); ok {
		matched = true
		if err := IsValid(component, l.Left, right, behaviours); err != nil {
			return err
		}
		if err := IsValid(component, l.Right, right, behaviours); err != nil {
			return err
		}
	}
	if r, ok := right.(device.ChoiceRule); ok {
		matched = true
		if err := IsValid(component, left, r.Left, behaviours); err != nil {
			return err
		}
		if err := IsValid(component, left, r.Right, behaviours); err != nil {
			return err
		}
	}

	if !matched {
		return fmt.Errorf("%w: cannot compare %s with %s for component %s", ErrUnsupportedRule, describe(left), describe(right), component)
	}
	return nil
}

func unwrap(r device.Rule) device.Rule {
	for {
		g, ok := r.(device.GroupRule)
		if !ok {
			return r
		}
		r = g.Inner
	}
}

func describe(r device.Rule) string {
	if r == nil {
		return "<none>"
	}
	return r.String()
}
