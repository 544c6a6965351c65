package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the persistence operations for declared devices.
// Only declarations are stored; devices are rebuilt by validation on load.
type Repository interface {
	// Get retrieves the declaration of the named device.
	// Returns ErrDeviceNotFound if the device does not exist.
	Get(ctx context.Context, name string) (*Declaration, error)

	// List retrieves all declarations ordered by name.
	List(ctx context.Context) ([]Declaration, error)

	// Create inserts a declaration.
	// Returns ErrDeviceExists if a device with the same name already exists.
	Create(ctx context.Context, decl *Declaration) error

	// Delete removes a declaration by name.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, name string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with migrations applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves a declaration by device name.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Declaration, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT declaration FROM devices WHERE name = ?", name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
		}
		return nil, fmt.Errorf("querying device %s: %w", name, err)
	}

	var decl Declaration
	if err := json.Unmarshal([]byte(raw), &decl); err != nil {
		return nil, fmt.Errorf("decoding device %s: %w", name, err)
	}
	return &decl, nil
}

// List retrieves all declarations ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Declaration, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, declaration FROM devices ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var decls []Declaration
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		var decl Declaration
		if err := json.Unmarshal([]byte(raw), &decl); err != nil {
			return nil, fmt.Errorf("decoding device %s: %w", name, err)
		}
		decls = append(decls, decl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return decls, nil
}

// Create inserts a declaration.
func (r *SQLiteRepository) Create(ctx context.Context, decl *Declaration) error {
	raw, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("marshalling declaration: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO devices (name, composite, declaration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		decl.Name,
		boolToInt(decl.IsComposite()),
		string(raw),
		now,
		now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %q", ErrDeviceExists, decl.Name)
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Delete removes a declaration by name.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return nil
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
