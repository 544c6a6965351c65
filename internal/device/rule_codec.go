package device

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleNode is the serialised form of a Rule, used in YAML device files and
// in the JSON stored by the repository.
//
// Exactly one field is set. A leaf may also be written as a bare string:
//
//	rule:
//	  seq: [b.pressed, b.released, {choice: [ledA.on, ledB.on]}]
type RuleNode struct {
	Event  string     `json:"event,omitempty" yaml:"event,omitempty"`
	Seq    []RuleNode `json:"seq,omitempty" yaml:"seq,omitempty"`
	Choice []RuleNode `json:"choice,omitempty" yaml:"choice,omitempty"`
	And    []RuleNode `json:"and,omitempty" yaml:"and,omitempty"`
	Group  *RuleNode  `json:"group,omitempty" yaml:"group,omitempty"`
}

// ruleNodeFields is RuleNode without its custom decoders.
type ruleNodeFields RuleNode

// UnmarshalYAML accepts either the "component.event" shorthand or a mapping.
func (n *RuleNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = RuleNode{Event: value.Value}
		return nil
	}
	var f ruleNodeFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	*n = RuleNode(f)
	return nil
}

// UnmarshalJSON accepts either the "component.event" shorthand or an object.
func (n *RuleNode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = RuleNode{Event: s}
		return nil
	}
	var f ruleNodeFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = RuleNode(f)
	return nil
}

// Rule converts the node into a rule tree.
func (n RuleNode) Rule() (Rule, error) {
	set := 0
	if n.Event != "" {
		set++
	}
	for _, l := range [][]RuleNode{n.Seq, n.Choice, n.And} {
		if l != nil {
			set++
		}
	}
	if n.Group != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: node must set exactly one of event, seq, choice, and, group", ErrInvalidRule)
	}

	switch {
	case n.Event != "":
		comp, ev, ok := strings.Cut(n.Event, ".")
		if !ok || comp == "" || ev == "" {
			return nil, fmt.Errorf("%w: event %q is not of the form component.event", ErrInvalidRule, n.Event)
		}
		return On(comp, ev), nil
	case n.Seq != nil:
		return foldNodes("seq", n.Seq, Seq)
	case n.Choice != nil:
		return foldNodes("choice", n.Choice, Choice)
	case n.And != nil:
		return foldNodes("and", n.And, And)
	default:
		inner, err := n.Group.Rule()
		if err != nil {
			return nil, err
		}
		return Group(inner), nil
	}
}

func foldNodes(kind string, nodes []RuleNode, join func(...Rule) Rule) (Rule, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%w: %s needs at least two operands, got %d", ErrInvalidRule, kind, len(nodes))
	}
	rules := make([]Rule, len(nodes))
	for i, node := range nodes {
		r, err := node.Rule()
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}
	return join(rules...), nil
}

// NodeOf converts a rule tree into its serialised form. Left-nested chains
// of the same combinator become a single list, so NodeOf(r).Rule() rebuilds r.
func NodeOf(r Rule) RuleNode {
	switch n := r.(type) {
	case EventRule:
		return RuleNode{Event: n.String()}
	case SequenceRule:
		return RuleNode{Seq: chain(n, func(r Rule) (Rule, Rule, bool) {
			s, ok := r.(SequenceRule)
			return s.Left, s.Right, ok
		})}
	case ChoiceRule:
		return RuleNode{Choice: chain(n, func(r Rule) (Rule, Rule, bool) {
			c, ok := r.(ChoiceRule)
			return c.Left, c.Right, ok
		})}
	case AndRule:
		return RuleNode{And: chain(n, func(r Rule) (Rule, Rule, bool) {
			a, ok := r.(AndRule)
			return a.Left, a.Right, ok
		})}
	case GroupRule:
		inner := NodeOf(n.Inner)
		return RuleNode{Group: &inner}
	default:
		return RuleNode{}
	}
}

func chain(r Rule, split func(Rule) (Rule, Rule, bool)) []RuleNode {
	left, right, _ := split(r)
	var nodes []RuleNode
	if _, _, ok := split(left); ok {
		nodes = chain(left, split)
	} else {
		nodes = []RuleNode{NodeOf(left)}
	}
	return append(nodes, NodeOf(right))
}

type triggerJSON struct {
	Event string   `json:"event"`
	Rule  RuleNode `json:"rule"`
}

// MarshalJSON encodes the trigger with its rule as a RuleNode.
func (t Trigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(triggerJSON{Event: t.Event, Rule: NodeOf(t.Rule)})
}

// UnmarshalJSON decodes a trigger written by MarshalJSON.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var tj triggerJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	r, err := tj.Rule.Rule()
	if err != nil {
		return fmt.Errorf("trigger %s: %w", tj.Event, err)
	}
	*t = Trigger{Event: tj.Event, Rule: r}
	return nil
}
