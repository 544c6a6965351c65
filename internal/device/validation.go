package device

import (
	"fmt"
	"strings"
)

// maxNameLength bounds device, action, event and component names.
const maxNameLength = 100

// Lookup resolves device type names to validated devices.
type Lookup interface {
	Lookup(name string) (*Device, bool)
}

// Catalog is an in-memory Lookup keyed by device name.
type Catalog map[string]*Device

// Lookup implements Lookup.
func (c Catalog) Lookup(name string) (*Device, bool) {
	d, ok := c[name]
	return d, ok
}

// Validate checks a declaration bottom-up (actions, events, behaviours and,
// for composite declarations, components and triggers) and returns the
// resulting device. Component types are resolved through declared.
//
// Validate only performs structural checks. The composition package adds
// the behavioural check on top for composite devices.
//
// Returns the first violation found, wrapped with the device name.
func Validate(decl *Declaration, declared Lookup) (*Device, error) {
	if decl == nil {
		return nil, fmt.Errorf("%w: nil declaration", ErrInvalidName)
	}
	if err := ValidateName(decl.Name); err != nil {
		return nil, err
	}

	d, err := validate(decl, declared)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", decl.Name, err)
	}
	return d, nil
}

func validate(decl *Declaration, declared Lookup) (*Device, error) {
	internal, external, err := ValidateEvents(decl.Events)
	if err != nil {
		return nil, err
	}

	// A device that never acts on its own needs no actions
	actions := map[string]Action{}
	if len(decl.Actions) > 0 || len(internal) > 0 {
		if actions, err = ValidateActions(decl.Actions); err != nil {
			return nil, err
		}
	}

	behaviours, err := ValidateBehaviours(decl.Behaviours, actions, internal, external)
	if err != nil {
		return nil, err
	}

	d := &Device{
		Name:           decl.Name,
		Actions:        append([]Action(nil), decl.Actions...),
		InternalEvents: internal,
		ExternalEvents: external,
		Behaviours:     behaviours,
		Uses:           append([]string(nil), decl.Uses...),
	}
	if !decl.IsComposite() {
		return d, nil
	}

	if d.Components, err = ValidateComponents(decl.Components, decl.Uses, declared); err != nil {
		return nil, err
	}
	if d.Triggers, err = ValidateTriggers(decl.Triggers, external, d.Components); err != nil {
		return nil, err
	}
	return d, nil
}

// ValidateName checks a device, action, event or component name.
// Names are non-empty, contain no whitespace and no '.', which separates
// components from events in trigger rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidName, name, maxNameLength)
	}
	if strings.ContainsAny(name, ". \t\r\n") {
		return fmt.Errorf("%w: %q must not contain '.' or whitespace", ErrInvalidName, name)
	}
	return nil
}

// ValidateActions checks that the action list is non-empty and free of
// duplicates, and returns the actions keyed by name.
func ValidateActions(actions []Action) (map[string]Action, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: actions", ErrEmptyList)
	}
	set := make(map[string]Action, len(actions))
	for _, a := range actions {
		if err := ValidateName(a.Name); err != nil {
			return nil, fmt.Errorf("action: %w", err)
		}
		if _, ok := set[a.Name]; ok {
			return nil, fmt.Errorf("%w: action %q", ErrDuplicate, a.Name)
		}
		set[a.Name] = a
	}
	return set, nil
}

// ValidateEvents checks that the event list is non-empty and that names are
// unique across both kinds. It returns the internal and external events,
// each in declaration order.
func ValidateEvents(events []Event) (internal, external []Event, err error) {
	if len(events) == 0 {
		return nil, nil, fmt.Errorf("%w: events", ErrEmptyList)
	}
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if err := ValidateName(e.Name); err != nil {
			return nil, nil, fmt.Errorf("event: %w", err)
		}
		if _, ok := seen[e.Name]; ok {
			return nil, nil, fmt.Errorf("%w: event %q", ErrDuplicate, e.Name)
		}
		seen[e.Name] = struct{}{}

		switch e.Kind {
		case KindInternal:
			internal = append(internal, e)
		case KindExternal:
			external = append(external, e)
		default:
			return nil, nil, fmt.Errorf("%w: event %q has unknown kind %q", ErrEventUndeclared, e.Name, e.Kind)
		}
	}
	return internal, external, nil
}

// ValidateBehaviours checks the behaviour graph against the declared actions
// and events:
//   - the left endpoint is begin or a declared event
//   - the right endpoint is declared; if internal, it carries a declared action
//   - no two behaviours share the same endpoints
//   - some behaviour leaves begin
//
// Endpoints are returned resolved to the declared events, so their kinds
// reflect the declaration rather than the input.
func ValidateBehaviours(behaviours []Behaviour, actions map[string]Action, internal, external []Event) ([]Behaviour, error) {
	if len(behaviours) == 0 {
		return nil, fmt.Errorf("%w: behaviours", ErrEmptyList)
	}

	declared := make(map[string]Event, len(internal)+len(external))
	for _, e := range internal {
		declared[e.Name] = e
	}
	for _, e := range external {
		declared[e.Name] = e
	}

	out := make([]Behaviour, 0, len(behaviours))
	seen := make(EdgeSet, len(behaviours))
	hasBegin := false

	for _, b := range behaviours {
		edge := b.Edge()

		// Validate left endpoint
		left, ok := declared[edge.From]
		if !ok {
			if edge.From != BeginEvent {
				return nil, fmt.Errorf("%w: behaviour %s: event %q", ErrEventUndeclared, edge, edge.From)
			}
			left = External(BeginEvent)
		}

		// Validate right endpoint and its action
		right, ok := declared[edge.To]
		if !ok {
			return nil, fmt.Errorf("%w: behaviour %s: event %q", ErrEventUndeclared, edge, edge.To)
		}
		if right.IsInternal() {
			if b.Action == nil {
				return nil, fmt.Errorf("%w: behaviour %s: internal event %q needs an action", ErrActionUndeclared, edge, edge.To)
			}
			if _, ok := actions[b.Action.Name]; !ok {
				return nil, fmt.Errorf("%w: behaviour %s: action %q", ErrActionUndeclared, edge, b.Action.Name)
			}
		} else if b.Action != nil {
			return nil, fmt.Errorf("%w: behaviour %s enters external event %q with action %q",
				ErrUnexpectedAction, edge, edge.To, b.Action.Name)
		}

		if seen.Has(edge.From, edge.To) {
			return nil, fmt.Errorf("%w: behaviour %s", ErrDuplicate, edge)
		}
		seen[edge] = struct{}{}

		if edge.From == BeginEvent {
			hasBegin = true
		}
		out = append(out, Behaviour{Left: left, Right: right, Action: b.Action})
	}

	if !hasBegin {
		return nil, fmt.Errorf("%w: no behaviour leaves %q", ErrMissingBegin, BeginEvent)
	}
	return out, nil
}

// ValidateComponents resolves component types against the declared devices.
// Each type must be listed in uses and resolvable; local names are unique.
// The returned components carry their resolved device.
func ValidateComponents(components []Component, uses []string, declared Lookup) ([]Component, error) {
	used := make(map[string]struct{}, len(uses))
	for _, u := range uses {
		if declared == nil {
			return nil, fmt.Errorf("%w: %q", ErrDeviceNotDeclared, u)
		}
		if _, ok := declared.Lookup(u); !ok {
			return nil, fmt.Errorf("%w: %q", ErrDeviceNotDeclared, u)
		}
		used[u] = struct{}{}
	}

	out := make([]Component, 0, len(components))
	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		if err := ValidateName(c.Name); err != nil {
			return nil, fmt.Errorf("component: %w", err)
		}
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("%w: component %q", ErrDuplicate, c.Name)
		}
		seen[c.Name] = struct{}{}

		if _, ok := used[c.Type]; !ok {
			return nil, fmt.Errorf("%w: component %q has type %q", ErrDeviceNotUsed, c.Name, c.Type)
		}
		// used entries were resolved above
		typ, _ := declared.Lookup(c.Type)
		out = append(out, Component{Name: c.Name, Type: c.Type, Device: typ})
	}
	return out, nil
}

// ValidateTriggers checks that each trigger binds a distinct declared
// external event, and that every leaf of its rule names a component and an
// event of that component's device type.
func ValidateTriggers(triggers []Trigger, external []Event, components []Component) ([]Trigger, error) {
	ext := make(map[string]struct{}, len(external))
	for _, e := range external {
		ext[e.Name] = struct{}{}
	}
	comps := make(map[string]Component, len(components))
	for _, c := range components {
		comps[c.Name] = c
	}

	out := make([]Trigger, 0, len(triggers))
	seen := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		if _, ok := ext[t.Event]; !ok {
			return nil, fmt.Errorf("%w: trigger for %q is not a declared external event", ErrEventUndeclared, t.Event)
		}
		if _, ok := seen[t.Event]; ok {
			return nil, fmt.Errorf("%w: trigger %q", ErrDuplicate, t.Event)
		}
		seen[t.Event] = struct{}{}

		if err := validateRule(t.Rule, comps); err != nil {
			return nil, fmt.Errorf("trigger %s: %w", t.Event, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func validateRule(r Rule, comps map[string]Component) error {
	switch n := r.(type) {
	case EventRule:
		c, ok := comps[n.Component]
		if !ok {
			return fmt.Errorf("%w: component %q", ErrDeviceNotDeclared, n.Component)
		}
		if c.Device == nil {
			return fmt.Errorf("%w: component %q has no resolved type", ErrDeviceNotDeclared, n.Component)
		}
		if _, ok := c.Device.Event(n.Event); !ok {
			return fmt.Errorf("%w: %s (device %s)", ErrEventNotDeclared, n, c.Type)
		}
		return nil
	case SequenceRule:
		return validatePair(n.Left, n.Right, comps)
	case ChoiceRule:
		return validatePair(n.Left, n.Right, comps)
	case AndRule:
		return validatePair(n.Left, n.Right, comps)
	case GroupRule:
		return validateRule(n.Inner, comps)
	case nil:
		return fmt.Errorf("%w: missing rule", ErrInvalidRule)
	default:
		return fmt.Errorf("%w: unknown rule %T", ErrInvalidRule, r)
	}
}

func validatePair(l, r Rule, comps map[string]Component) error {
	if err := validateRule(l, comps); err != nil {
		return err
	}
	return validateRule(r, comps)
}
