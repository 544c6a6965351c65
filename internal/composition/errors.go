package composition

import "errors"

// Domain errors for the composition package.
var (
	// ErrInvalidReduction is returned when two restricted rules ask a component
	// for a transition its own behaviours do not declare.
	ErrInvalidReduction = errors.New("composition: invalid reduction")

	// ErrCompositionInvalid wraps any failure of the composition check and
	// names the composite device and behaviour it was found on.
	ErrCompositionInvalid = errors.New("composition: invalid composition")

	// ErrUnsupportedRule is returned when a rule cannot be restricted or
	// compared, such as a concurrent rule that mentions the component.
	ErrUnsupportedRule = errors.New("composition: unsupported rule")
)
