package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cajomferro/shelley-sub001/internal/composition"
	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/influxdb"
	"github.com/cajomferro/shelley-sub001/internal/manifest"
)

// Logger is the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher announces verdicts, typically over MQTT.
type Publisher interface {
	PublishVerification(device string, payload []byte) error
}

// MetricsWriter records verdicts as time-series points.
type MetricsWriter interface {
	WriteVerification(v influxdb.Verification)
	WriteRun(accepted, rejected int, duration time.Duration)
}

// Service verifies declarations and declares the accepted ones in a
// registry. Every verdict is stored, published and recorded when the
// corresponding sink is set.
type Service struct {
	registry  *device.Registry
	store     ReportStore
	publisher Publisher
	metrics   MetricsWriter
	failFast  bool
	logger    Logger
	now       func() time.Time
}

// NewService creates a verification service declaring into registry.
func NewService(registry *device.Registry) *Service {
	return &Service{
		registry: registry,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetStore sets where reports are persisted.
func (s *Service) SetStore(store ReportStore) { s.store = store }

// SetPublisher sets where verdicts are announced.
func (s *Service) SetPublisher(p Publisher) { s.publisher = p }

// SetMetrics sets where verdict metrics are written.
func (s *Service) SetMetrics(m MetricsWriter) { s.metrics = m }

// SetFailFast stops batch runs at the first rejected device.
func (s *Service) SetFailFast(failFast bool) { s.failFast = failFast }

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) { s.logger = logger }

// Verify validates one declaration against the registry and declares it
// when accepted. A rejected device is a report, not an error; the error is
// reserved for failures to store the report.
func (s *Service) Verify(ctx context.Context, decl *device.Declaration) (Report, error) {
	started := s.now()
	d, err := s.registry.Declare(ctx, decl)
	report := newReport(decl, d, err, started, s.now())

	if report.Valid {
		s.logger.Info("device accepted", "device", report.Device, "report", report.ID)
	} else {
		s.logger.Warn("device rejected", "device", report.Device, "kind", report.Kind, "error", report.Error)
	}
	return report, s.record(ctx, report)
}

// VerifyAll verifies a batch of declarations in dependency order.
// Ordering failures (duplicate names, cycles) reject the whole batch.
func (s *Service) VerifyAll(ctx context.Context, decls []device.Declaration) (*Summary, error) {
	started := s.now()
	ordered, err := device.Order(decls)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		report, err := s.Verify(ctx, &ordered[i])
		summary.add(report)
		if err != nil {
			return summary, err
		}
		if !report.Valid && s.failFast {
			break
		}
	}
	summary.Duration = s.now().Sub(started)

	if s.metrics != nil {
		s.metrics.WriteRun(summary.Accepted, summary.Rejected, summary.Duration)
	}
	s.logger.Info("verification run complete",
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"duration", summary.Duration,
	)
	return summary, nil
}

// VerifyManifest parses YAML manifest data and verifies its devices.
func (s *Service) VerifyManifest(ctx context.Context, data []byte) (*Summary, error) {
	decls, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	return s.VerifyAll(ctx, decls)
}

// CheckAll verifies a batch without declaring anything. Devices of the
// batch may use each other and any device already in the registry.
// Nothing is stored or published.
func (s *Service) CheckAll(ctx context.Context, decls []device.Declaration) (*Summary, error) {
	started := s.now()
	ordered, err := device.Order(decls)
	if err != nil {
		return nil, err
	}

	scratch := overlay{batch: make(device.Catalog, len(ordered)), base: s.registry}
	summary := &Summary{}
	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		decl := &ordered[i]
		t0 := s.now()

		var d *device.Device
		err := s.checkName(decl.Name)
		if err == nil {
			d, err = composition.Validate(decl, scratch)
		}
		if err == nil {
			scratch.batch[d.Name] = d
		}
		summary.add(newReport(decl, d, err, t0, s.now()))
		if err != nil && s.failFast {
			break
		}
	}
	summary.Duration = s.now().Sub(started)
	return summary, nil
}

// CheckManifest parses YAML manifest data and checks its devices.
func (s *Service) CheckManifest(ctx context.Context, data []byte) (*Summary, error) {
	decls, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	return s.CheckAll(ctx, decls)
}

// Reports returns the stored reports for a device, newest first.
func (s *Service) Reports(ctx context.Context, name string, limit int) ([]Report, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx, name, limit)
}

func (s *Service) checkName(name string) error {
	if _, ok := s.registry.Lookup(name); ok {
		return fmt.Errorf("%w: %q", device.ErrDeviceExists, name)
	}
	return nil
}

// record hands a report to the configured sinks. Publishing and metrics
// are best effort; a storage failure is returned.
func (s *Service) record(ctx context.Context, r Report) error {
	if s.publisher != nil {
		payload, err := json.Marshal(r)
		if err == nil {
			err = s.publisher.PublishVerification(r.Device, payload)
		}
		if err != nil {
			s.logger.Warn("publishing verdict failed", "device", r.Device, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.WriteVerification(influxdb.Verification{
			Device:     r.Device,
			Valid:      r.Valid,
			Kind:       string(r.Kind),
			Composite:  r.Composite,
			Components: r.Components,
			Behaviours: r.Behaviours,
			Duration:   r.Duration,
			CheckedAt:  r.CheckedAt,
		})
	}

	if s.store != nil {
		if err := s.store.Save(ctx, r); err != nil {
			return fmt.Errorf("storing report for %s: %w", r.Device, err)
		}
	}
	return nil
}

// overlay looks devices up in a batch first, then in a base lookup.
type overlay struct {
	batch device.Catalog
	base  device.Lookup
}

func (o overlay) Lookup(name string) (*device.Device, bool) {
	if d, ok := o.batch.Lookup(name); ok {
		return d, true
	}
	return o.base.Lookup(name)
}
