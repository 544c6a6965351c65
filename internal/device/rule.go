package device

// Rule is a trigger rule tree over component events.
//
// The set of rule kinds is closed: EventRule, SequenceRule, ChoiceRule,
// AndRule and GroupRule. Code that inspects rules does so with a type switch
// and must treat any other kind as unsupported.
type Rule interface {
	String() string
	rule()
}

// EventRule is a leaf: the event named Event of the component named Component.
type EventRule struct {
	Component string
	Event     string
}

// SequenceRule runs Left then Right.
type SequenceRule struct {
	Left, Right Rule
}

// ChoiceRule runs either Left or Right.
type ChoiceRule struct {
	Left, Right Rule
}

// AndRule runs Left and Right concurrently.
type AndRule struct {
	Left, Right Rule
}

// GroupRule is a transparent parenthesisation of Inner.
type GroupRule struct {
	Inner Rule
}

func (EventRule) rule()    {}
func (SequenceRule) rule() {}
func (ChoiceRule) rule()   {}
func (AndRule) rule()      {}
func (GroupRule) rule()    {}

func (r EventRule) String() string    { return r.Component + "." + r.Event }
func (r SequenceRule) String() string { return r.Left.String() + " ; " + r.Right.String() }
func (r ChoiceRule) String() string   { return r.Left.String() + " + " + r.Right.String() }
func (r AndRule) String() string      { return r.Left.String() + " & " + r.Right.String() }
func (r GroupRule) String() string    { return "(" + r.Inner.String() + ")" }

// On returns the leaf rule component.event.
func On(component, event string) Rule {
	return EventRule{Component: component, Event: event}
}

// Seq chains rules left to right: Seq(a, b, c) is (a ; b) ; c.
// A single rule is returned as is; Seq() returns nil.
func Seq(rules ...Rule) Rule {
	return fold(rules, func(l, r Rule) Rule { return SequenceRule{Left: l, Right: r} })
}

// Choice combines alternatives left to right: Choice(a, b, c) is (a + b) + c.
func Choice(rules ...Rule) Rule {
	return fold(rules, func(l, r Rule) Rule { return ChoiceRule{Left: l, Right: r} })
}

// And combines concurrent rules left to right.
func And(rules ...Rule) Rule {
	return fold(rules, func(l, r Rule) Rule { return AndRule{Left: l, Right: r} })
}

// Group wraps a rule in parentheses.
func Group(inner Rule) Rule {
	return GroupRule{Inner: inner}
}

func fold(rules []Rule, join func(l, r Rule) Rule) Rule {
	if len(rules) == 0 {
		return nil
	}
	acc := rules[0]
	for _, r := range rules[1:] {
		acc = join(acc, r)
	}
	return acc
}

// Leaves returns the event leaves of a rule in left-to-right order.
func Leaves(r Rule) []EventRule {
	var out []EventRule
	var walk func(Rule)
	walk = func(r Rule) {
		switch n := r.(type) {
		case EventRule:
			out = append(out, n)
		case SequenceRule:
			walk(n.Left)
			walk(n.Right)
		case ChoiceRule:
			walk(n.Left)
			walk(n.Right)
		case AndRule:
			walk(n.Left)
			walk(n.Right)
		case GroupRule:
			walk(n.Inner)
		}
	}
	walk(r)
	return out
}
