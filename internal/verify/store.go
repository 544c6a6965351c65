package verify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultReportLimit caps List when no limit is given.
	defaultReportLimit = 50

	// checkedAtFormat is fixed-width so stored timestamps sort as text.
	checkedAtFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// ReportStore persists verification reports.
type ReportStore interface {
	// Save inserts a report.
	Save(ctx context.Context, r Report) error

	// List returns the reports of a device, newest first.
	// A non-positive limit selects the default.
	List(ctx context.Context, device string, limit int) ([]Report, error)
}

// SQLiteReportStore implements ReportStore using the verification_reports table.
type SQLiteReportStore struct {
	db *sql.DB
}

// NewSQLiteReportStore creates a report store on an open, migrated database.
func NewSQLiteReportStore(db *sql.DB) *SQLiteReportStore {
	return &SQLiteReportStore{db: db}
}

// Save inserts a report.
func (s *SQLiteReportStore) Save(ctx context.Context, r Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_reports
			(id, device, valid, kind, error, composite, components, behaviours, duration_us, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(),
		r.Device,
		boolToInt(r.Valid),
		string(r.Kind),
		r.Error,
		boolToInt(r.Composite),
		r.Components,
		r.Behaviours,
		r.Duration.Microseconds(),
		r.CheckedAt.UTC().Format(checkedAtFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// List returns the reports of a device, newest first.
func (s *SQLiteReportStore) List(ctx context.Context, device string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device, valid, kind, error, composite, components, behaviours, duration_us, checked_at
		FROM verification_reports
		WHERE device = ?
		ORDER BY checked_at DESC, id
		LIMIT ?`,
		device, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var (
			r                   Report
			id, kind, checkedAt string
			valid, composite    int
			durationUS          int64
		)
		if err := rows.Scan(&id, &r.Device, &valid, &kind, &r.Error, &composite,
			&r.Components, &r.Behaviours, &durationUS, &checkedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing report id %q: %w", id, err)
		}
		if r.CheckedAt, err = time.Parse(checkedAtFormat, checkedAt); err != nil {
			return nil, fmt.Errorf("parsing report time %q: %w", checkedAt, err)
		}
		r.Valid = valid != 0
		r.Composite = composite != 0
		r.Kind = Kind(kind)
		r.Duration = time.Duration(durationUS) * time.Microsecond
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
