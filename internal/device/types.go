package device

import (
	"fmt"
	"sort"
)

// BeginEvent is the distinguished entry point of every device protocol.
// A behaviour may leave it without the device declaring it.
const BeginEvent = "begin"

// EventKind tells whether an event is reached by the device itself
// (internal, through an action) or by its environment (external).
type EventKind string

// Event kinds.
const (
	KindInternal EventKind = "internal"
	KindExternal EventKind = "external"
)

// Action is a named side-effecting operation exposed by a device.
type Action struct {
	Name string `json:"name"`
}

// Event is a named point in a device's protocol.
// Identity is the name; the kind only constrains how the event may be reached.
type Event struct {
	Name string    `json:"name"`
	Kind EventKind `json:"kind"`
}

// Internal returns an internal event.
func Internal(name string) Event {
	return Event{Name: name, Kind: KindInternal}
}

// External returns an external event.
func External(name string) Event {
	return Event{Name: name, Kind: KindExternal}
}

// IsInternal reports whether the event is internal.
func (e Event) IsInternal() bool {
	return e.Kind == KindInternal
}

// Edge is the identity of a behaviour: the names of its two endpoints.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e Edge) String() string {
	return e.From + " -> " + e.To
}

// EdgeSet is a set of edges, used for membership tests over behaviour graphs.
type EdgeSet map[Edge]struct{}

// Has reports whether the set contains the edge from -> to.
func (s EdgeSet) Has(from, to string) bool {
	_, ok := s[Edge{From: from, To: to}]
	return ok
}

// Behaviour is a directed edge between two events, labelled with an action
// when (and only when) the right endpoint is internal.
type Behaviour struct {
	Left   Event   `json:"left"`
	Right  Event   `json:"right"`
	Action *Action `json:"action,omitempty"`
}

// NewBehaviour builds a behaviour, enforcing the action rule:
// an internal right endpoint needs an action, an external one must not have one.
func NewBehaviour(left, right Event, action *Action) (Behaviour, error) {
	b := Behaviour{Left: left, Right: right, Action: action}
	if right.IsInternal() && action == nil {
		return Behaviour{}, fmt.Errorf("%w: behaviour %s enters internal event %q", ErrMissingAction, b.Edge(), right.Name)
	}
	if !right.IsInternal() && action != nil {
		return Behaviour{}, fmt.Errorf("%w: behaviour %s enters external event %q with action %q",
			ErrUnexpectedAction, b.Edge(), right.Name, action.Name)
	}
	return b, nil
}

// Edge returns the behaviour's identity.
func (b Behaviour) Edge() Edge {
	return Edge{From: b.Left.Name, To: b.Right.Name}
}

func (b Behaviour) String() string {
	if b.Action != nil {
		return fmt.Sprintf("%s -> %s() %s", b.Left.Name, b.Action.Name, b.Right.Name)
	}
	return b.Edge().String()
}

// Component is a named instance of a previously declared device type.
// Device is nil on declarations and set by validation to the resolved type.
type Component struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Device *Device `json:"-"`
}

// Trigger binds an external event of a composite device to the rule
// describing how its components realise it. JSON encoding goes through
// RuleNode (see rule_codec.go).
type Trigger struct {
	Event string
	Rule  Rule
}

// Declaration is a device description as produced by a front end.
// It is composite when it has components or triggers.
type Declaration struct {
	Name       string      `json:"name"`
	Actions    []Action    `json:"actions,omitempty"`
	Events     []Event     `json:"events"`
	Behaviours []Behaviour `json:"behaviours"`
	Uses       []string    `json:"uses,omitempty"`
	Components []Component `json:"components,omitempty"`
	Triggers   []Trigger   `json:"triggers,omitempty"`
}

// IsComposite reports whether the declaration builds on other devices.
func (d *Declaration) IsComposite() bool {
	return len(d.Components) > 0 || len(d.Triggers) > 0
}

// Dependencies returns the device types the declaration needs, sorted.
func (d *Declaration) Dependencies() []string {
	seen := make(map[string]struct{}, len(d.Uses)+len(d.Components))
	for _, u := range d.Uses {
		seen[u] = struct{}{}
	}
	for _, c := range d.Components {
		seen[c.Type] = struct{}{}
	}
	deps := make([]string, 0, len(seen))
	for name := range seen {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

// Device is a validated declaration. Devices are immutable once built and
// may be shared freely as component types.
type Device struct {
	Name           string
	Actions        []Action
	InternalEvents []Event
	ExternalEvents []Event
	Behaviours     []Behaviour
	Uses           []string
	Components     []Component
	Triggers       []Trigger
}

// IsComposite reports whether the device is built from components.
func (d *Device) IsComposite() bool {
	return len(d.Components) > 0 || len(d.Triggers) > 0
}

// Event returns the declared event with the given name.
func (d *Device) Event(name string) (Event, bool) {
	for _, e := range d.InternalEvents {
		if e.Name == name {
			return e, true
		}
	}
	for _, e := range d.ExternalEvents {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

// Edges returns the behaviour graph in declaration order.
func (d *Device) Edges() []Edge {
	edges := make([]Edge, len(d.Behaviours))
	for i, b := range d.Behaviours {
		edges[i] = b.Edge()
	}
	return edges
}

// EdgeSet returns the behaviour graph as a set.
func (d *Device) EdgeSet() EdgeSet {
	set := make(EdgeSet, len(d.Behaviours))
	for _, b := range d.Behaviours {
		set[b.Edge()] = struct{}{}
	}
	return set
}

// Component returns the component with the given local name.
func (d *Device) Component(name string) (Component, bool) {
	for _, c := range d.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Rules returns the trigger rules keyed by event name.
func (d *Device) Rules() map[string]Rule {
	rules := make(map[string]Rule, len(d.Triggers))
	for _, t := range d.Triggers {
		rules[t.Event] = t.Rule
	}
	return rules
}

// Declaration rebuilds the declaration the device was validated from.
// Internal events come first, then external ones.
func (d *Device) Declaration() Declaration {
	decl := Declaration{
		Name:       d.Name,
		Actions:    append([]Action(nil), d.Actions...),
		Behaviours: append([]Behaviour(nil), d.Behaviours...),
		Uses:       append([]string(nil), d.Uses...),
		Triggers:   append([]Trigger(nil), d.Triggers...),
	}
	decl.Events = make([]Event, 0, len(d.InternalEvents)+len(d.ExternalEvents))
	decl.Events = append(decl.Events, d.InternalEvents...)
	decl.Events = append(decl.Events, d.ExternalEvents...)
	for _, c := range d.Components {
		decl.Components = append(decl.Components, Component{Name: c.Name, Type: c.Type})
	}
	return decl
}
