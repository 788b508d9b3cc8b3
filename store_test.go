package sprited

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", []byte("one")))
	require.NoError(t, s.Set("k", []byte("two")))

	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestDB(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sprited.db")

	db, err := NewDB(file)
	require.NoError(t, err)
	testStore(t, db)
	require.NoError(t, db.Close())

	// Survives a reopen
	db, err = NewDB(file)
	require.NoError(t, err)
	defer db.Close()

	v, err := db.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)
}

func TestLoadSave(t *testing.T) {
	logger := log.New(ioutil.Discard, "", 0)
	s := NewMemoryStore()

	assert.Equal(t, jres.Default(), Load(s, logger))

	item, err := jres.FromDataString(squareData, palette.Arcade)
	require.NoError(t, err)
	require.NoError(t, Save(s, item))
	assert.Equal(t, item, Load(s, logger))

	assert.Error(t, Save(brokenStore{}, item))
	assert.Equal(t, jres.Default(), Load(brokenStore{}, logger))
}
