package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"modatlas/internal/logging"
	"modatlas/internal/policy"
	"modatlas/internal/resolve"
)

// Record is one unit of tracked work scoped to a set of policy modules.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ModuleScope []string  `json:"module_scope"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ScopeValidationError is returned when a record's module scope fails
// policy validation. It carries the full validation result so callers can
// render suggestions.
type ScopeValidationError struct {
	Result resolve.ValidationResult
}

func (e *ScopeValidationError) Error() string {
	return fmt.Sprintf("record module scope invalid: %d unresolved references", len(e.Result.Errors))
}

// SaveRecord validates the record's module scope against the policy and
// persists it with the canonical IDs. An invalid scope is never written.
// A new record (empty ID) gets a generated UUID. Returns the stored record.
func (s *RecordStore) SaveRecord(rec Record, pol *policy.Policy, aliases *policy.AliasTable) (Record, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SaveRecord")
	defer timer.Stop()

	if rec.Title == "" {
		return Record{}, fmt.Errorf("record title required")
	}

	validation := resolve.ValidateModuleIDs(rec.ModuleScope, pol, aliases, resolve.Options{})
	if !validation.Valid {
		logging.Store("Refusing to persist record %q: invalid module scope", rec.Title)
		return Record{}, &ScopeValidationError{Result: validation}
	}
	rec.ModuleScope = validation.Canonical

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusOpen
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	scopeJSON, err := json.Marshal(rec.ModuleScope)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal module scope: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO records (id, title, module_scope, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, string(scopeJSON), rec.Status, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save record %s: %v", rec.ID, err)
		return Record{}, err
	}

	logging.StoreDebug("Saved record %s (%d scope modules)", rec.ID, len(rec.ModuleScope))
	return rec, nil
}

// GetRecord loads one record by ID.
func (s *RecordStore) GetRecord(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, title, module_scope, status, created_at, updated_at FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("record %s not found", id)
	}
	return rec, err
}

// ListRecords returns all records, optionally filtered by status, newest first.
func (s *RecordStore) ListRecords(status string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, title, module_scope, status, created_at, updated_at FROM records`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRecord removes a record by ID.
func (s *RecordStore) DeleteRecord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	logging.StoreDebug("Deleted record %s", id)
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var scopeJSON string
	if err := sc.Scan(&rec.ID, &rec.Title, &scopeJSON, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(scopeJSON), &rec.ModuleScope); err != nil {
		return Record{}, fmt.Errorf("corrupt module scope for record %s: %w", rec.ID, err)
	}
	return rec, nil
}
