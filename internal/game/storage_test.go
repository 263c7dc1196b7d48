package game

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentStoreRegisterAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")

	store, err := NewStudentStore(path)
	require.NoError(t, err)

	student, err := store.Register("  Anna Comnena  ", "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Anna Comnena", student.FullName)
	assert.NotEmpty(t, student.ID)

	got, err := store.Get(student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.FullName, got.FullName)
}

func TestStudentStoreRequiresName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")

	store, err := NewStudentStore(path)
	require.NoError(t, err)

	_, err = store.Register("   ", "someone@example.com")
	assert.Error(t, err)
}

func TestStudentStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")

	store, err := NewStudentStore(path)
	require.NoError(t, err)

	first, err := store.Register("First Student", "")
	require.NoError(t, err)
	second, err := store.Register("Second Student", "")
	require.NoError(t, err)

	reopened, err := NewStudentStore(path)
	require.NoError(t, err)

	records := reopened.List()
	require.Len(t, records, 2)
	ids := []string{records[0].ID, records[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	_, err = reopened.Get("missing")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
