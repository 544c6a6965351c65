package verify

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cajomferro/shelley-sub001/internal/composition"
	"github.com/cajomferro/shelley-sub001/internal/device"
)

// Kind classifies why a device was rejected.
type Kind string

// Rejection kinds.
const (
	KindStructure   Kind = "structure"   // malformed declaration
	KindComposition Kind = "composition" // triggers disagree with component behaviours
	KindDuplicate   Kind = "duplicate"   // name already declared
	KindDependency  Kind = "dependency"  // cyclic or unknown device types
	KindInternal    Kind = "internal"    // storage and other failures
)

// Report is the verdict for one device.
type Report struct {
	ID         uuid.UUID     `json:"id"`
	Device     string        `json:"device"`
	Valid      bool          `json:"valid"`
	Kind       Kind          `json:"kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Composite  bool          `json:"composite"`
	Components int           `json:"components"`
	Behaviours int           `json:"behaviours"`
	Duration   time.Duration `json:"duration_ns"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Summary collects the reports of a batch run.
type Summary struct {
	Reports  []Report      `json:"reports"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether every device in the run was accepted.
func (s *Summary) OK() bool {
	return s.Rejected == 0
}

func (s *Summary) add(r Report) {
	s.Reports = append(s.Reports, r)
	if r.Valid {
		s.Accepted++
	} else {
		s.Rejected++
	}
}

// Classify maps a verification error to its rejection kind.
// A nil error has no kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, composition.ErrCompositionInvalid):
		return KindComposition
	case errors.Is(err, device.ErrDeviceExists):
		return KindDuplicate
	case errors.Is(err, device.ErrDependencyCycle),
		errors.Is(err, device.ErrDeviceNotDeclared),
		errors.Is(err, device.ErrDeviceNotUsed):
		return KindDependency
	case errors.Is(err, device.ErrEmptyList),
		errors.Is(err, device.ErrDuplicate),
		errors.Is(err, device.ErrEventUndeclared),
		errors.Is(err, device.ErrActionUndeclared),
		errors.Is(err, device.ErrMissingBegin),
		errors.Is(err, device.ErrMissingAction),
		errors.Is(err, device.ErrUnexpectedAction),
		errors.Is(err, device.ErrEventNotDeclared),
		errors.Is(err, device.ErrInvalidRule),
		errors.Is(err, device.ErrInvalidName):
		return KindStructure
	default:
		return KindInternal
	}
}

// newReport builds the report for one declaration. d is nil when the
// declaration was rejected.
func newReport(decl *device.Declaration, d *device.Device, err error, started, finished time.Time) Report {
	r := Report{
		ID:         uuid.New(),
		Device:     decl.Name,
		Valid:      err == nil,
		Kind:       Classify(err),
		Composite:  decl.IsComposite(),
		Components: len(decl.Components),
		Behaviours: len(decl.Behaviours),
		Duration:   finished.Sub(started),
		CheckedAt:  finished.UTC(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	if d != nil {
		r.Components = len(d.Components)
		r.Behaviours = len(d.Behaviours)
	}
	return r
}
