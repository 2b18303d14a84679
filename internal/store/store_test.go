package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modatlas/internal/policy"
)

func testPolicy(ids ...string) *policy.Policy {
	modules := make(map[string]policy.Module, len(ids))
	for _, id := range ids {
		modules[id] = policy.Module{ID: id}
	}
	return &policy.Policy{Modules: modules}
}

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRecord_CanonicalizesScope(t *testing.T) {
	s := openTestStore(t)
	pol := testPolicy("services/auth-core", "services/gateway")

	rec, err := s.SaveRecord(Record{
		Title:       "harden auth flow",
		ModuleScope: []string{"auth-core", "services/gateway"},
	}, pol, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusOpen, rec.Status)
	// Substring reference persisted in canonical form.
	assert.Equal(t, []string{"services/auth-core", "services/gateway"}, rec.ModuleScope)

	loaded, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ModuleScope, loaded.ModuleScope)
	assert.Equal(t, "harden auth flow", loaded.Title)
}

func TestSaveRecord_RejectsInvalidScope(t *testing.T) {
	s := openTestStore(t)
	pol := testPolicy("services/auth-core")

	_, err := s.SaveRecord(Record{
		Title:       "bad scope",
		ModuleScope: []string{"no-such-module-anywhere-at-all"},
	}, pol, nil)
	require.Error(t, err)

	var scopeErr *ScopeValidationError
	require.True(t, errors.As(err, &scopeErr))
	require.Len(t, scopeErr.Result.Errors, 1)

	// Nothing persisted.
	records, err := s.ListRecords("")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveRecord_RequiresTitle(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveRecord(Record{}, testPolicy("a"), nil)
	assert.Error(t, err)
}

func TestSaveRecord_EmptyScopeAllowed(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.SaveRecord(Record{Title: "unscoped"}, testPolicy("a"), nil)
	require.NoError(t, err)
	assert.Empty(t, rec.ModuleScope)
}

func TestListRecords_StatusFilter(t *testing.T) {
	s := openTestStore(t)
	pol := testPolicy("a")

	open1, err := s.SaveRecord(Record{Title: "one", ModuleScope: []string{"a"}}, pol, nil)
	require.NoError(t, err)
	closed, err := s.SaveRecord(Record{Title: "two", Status: StatusClosed}, pol, nil)
	require.NoError(t, err)

	all, err := s.ListRecords("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyOpen, err := s.ListRecords(StatusOpen)
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, open1.ID, onlyOpen[0].ID)

	onlyClosed, err := s.ListRecords(StatusClosed)
	require.NoError(t, err)
	require.Len(t, onlyClosed, 1)
	assert.Equal(t, closed.ID, onlyClosed[0].ID)
}

func TestDeleteRecord(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.SaveRecord(Record{Title: "doomed"}, testPolicy("a"), nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecord(rec.ID))
	assert.Error(t, s.DeleteRecord(rec.ID), "second delete reports not found")

	_, err = s.GetRecord(rec.ID)
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.db")

	s, err := Open(path)
	require.NoError(t, err)
	rec, err := s.SaveRecord(Record{Title: "persistent"}, testPolicy("a"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "persistent", loaded.Title)
}
