package composition

import (
	"fmt"
	"time"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Checker runs the composition check on validated composite devices.
// A Checker holds no state besides its logger and is safe for concurrent use.
type Checker struct {
	logger device.Logger
}

// New creates a Checker that does not log.
func New() *Checker {
	return &Checker{logger: noopLogger{}}
}

// SetLogger sets the logger for the checker.
func (c *Checker) SetLogger(logger device.Logger) {
	c.logger = logger
}

var defaultChecker = New()

// Check runs the composition check with a non-logging Checker.
// Its signature matches device.Checker.
func Check(d *device.Device) error {
	return defaultChecker.Check(d)
}

// Validate validates a declaration structurally and, when it is composite,
// checks its composition.
func Validate(decl *device.Declaration, declared device.Lookup) (*device.Device, error) {
	d, err := device.Validate(decl, declared)
	if err != nil {
		return nil, err
	}
	if d.IsComposite() {
		if err := Check(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Check verifies every behaviour e1 -> e2 of the composite against every
// component:
//   - a component in both triggers: the two restricted rules are compared directly
//   - only in e2's trigger: compared against its nearest events before e1
//   - only in e1's trigger: compared against its nearest events after e2
//
// The first failure aborts the check with ErrCompositionInvalid.
func (c *Checker) Check(d *device.Device) error {
	start := time.Now()
	edges := d.Edges()
	rules := d.Rules()
	graphs := make(map[string]device.EdgeSet, len(d.Components))

	for _, edge := range edges {
		left, right := rules[edge.From], rules[edge.To]
		inLeft, inRight := Devices(left), Devices(right)

		for _, comp := range d.Components {
			behaviours, err := componentGraph(comp, graphs)
			if err != nil {
				return fmt.Errorf("%w: device %s, component %s: %w", ErrCompositionInvalid, d.Name, comp.Name, err)
			}

			_, l := inLeft[comp.Name]
			_, r := inRight[comp.Name]
			switch {
			case l && r:
				err = checkPair(comp.Name, left, right, behaviours)
			case r:
				for _, p := range Pred(edge.From, comp.Name, edges, rules) {
					if err = checkPair(comp.Name, rules[p], right, behaviours); err != nil {
						break
					}
				}
			case l:
				for _, s := range Succ(edge.To, comp.Name, edges, rules) {
					if err = checkPair(comp.Name, left, rules[s], behaviours); err != nil {
						break
					}
				}
			}
			if err != nil {
				c.logger.Debug("composition rejected", "device", d.Name, "behaviour", edge.String(), "component", comp.Name, "error", err)
				return fmt.Errorf("%w: device %s, behaviour %s, component %s: %w", ErrCompositionInvalid, d.Name, edge, comp.Name, err)
			}
		}
	}

	c.logger.Debug("composition checked",
		"device", d.Name,
		"behaviours", len(edges),
		"components", len(d.Components),
		"duration", time.Since(start),
	)
	return nil
}

func componentGraph(comp device.Component, graphs map[string]device.EdgeSet) (device.EdgeSet, error) {
	if comp.Device == nil {
		return nil, fmt.Errorf("%w: component %q of type %q is unresolved", device.ErrDeviceNotDeclared, comp.Name, comp.Type)
	}
	if g, ok := graphs[comp.Type]; ok {
		return g, nil
	}
	g := comp.Device.EdgeSet()
	graphs[comp.Type] = g
	return g, nil
}

func checkPair(component string, left, right device.Rule, behaviours device.EdgeSet) error {
	l, err := Restrict(component, left)
	if err != nil {
		return err
	}
	r, err := Restrict(component, right)
	if err != nil {
		return err
	}
	return IsValid(component, l, r, behaviours)
}
