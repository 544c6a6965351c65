// Package composition checks that a composite device is consistent with the
// protocols of its components.
//
// For every behaviour e1 -> e2 of the composite, each component's view of
// the two trigger rules must be a sequence of transitions the component
// itself declares. Components absent from one side are checked against the
// nearest composite events, before or after, in which they take part.
package composition
