package device

import "errors"

// Domain errors for the device package.
//
// Every validation failure wraps exactly one of these, together with the
// offending identifiers, so callers can branch with errors.Is():
//
//	if errors.Is(err, device.ErrMissingBegin) {
//	    // the declaration has no entry point
//	}
var (
	// ErrEmptyList is returned when a required list (actions, events, behaviours) is empty.
	ErrEmptyList = errors.New("device: empty list")

	// ErrDuplicate is returned when two actions, events, behaviours, components
	// or triggers share the same identity.
	ErrDuplicate = errors.New("device: duplicate")

	// ErrEventUndeclared is returned when a behaviour or trigger refers to an
	// event the device does not declare.
	ErrEventUndeclared = errors.New("device: event undeclared")

	// ErrActionUndeclared is returned when a behaviour entering an internal
	// event carries no action, or an action the device does not declare.
	ErrActionUndeclared = errors.New("device: action undeclared")

	// ErrMissingBegin is returned when no behaviour leaves the begin event.
	ErrMissingBegin = errors.New("device: missing begin")

	// ErrMissingAction is returned when a behaviour into an internal event is
	// built without an action.
	ErrMissingAction = errors.New("device: missing action")

	// ErrUnexpectedAction is returned when a behaviour into an external event
	// is built with an action.
	ErrUnexpectedAction = errors.New("device: unexpected action")

	// ErrDeviceNotUsed is returned when a component type is missing from the
	// device's uses list.
	ErrDeviceNotUsed = errors.New("device: device not used")

	// ErrDeviceNotDeclared is returned when a component type or a trigger
	// component does not resolve.
	ErrDeviceNotDeclared = errors.New("device: device not declared")

	// ErrEventNotDeclared is returned when a trigger rule names an event the
	// component's device type does not declare.
	ErrEventNotDeclared = errors.New("device: component event not declared")

	// ErrInvalidRule is returned when a trigger rule tree is malformed.
	ErrInvalidRule = errors.New("device: invalid rule")

	// ErrInvalidName is returned when a device, action, event or component name is empty.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrDeviceNotFound is returned when a device name is not in the registry.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when declaring a device whose name is already taken.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrDeviceInUse is returned when removing a device other devices are built from.
	ErrDeviceInUse = errors.New("device: in use")

	// ErrDependencyCycle is returned when declarations use each other in a cycle.
	ErrDependencyCycle = errors.New("device: dependency cycle")
)
