package economy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "userData.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStoreCreatesBackingFile(t *testing.T) {
	_, path := newTestFileStore(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFileStoreFirstReadPersistsDefault(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	rec, err := store.Read(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultBalance), rec.Balance)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]*UserRecord
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Contains(t, onDisk, "alice")
	assert.Equal(t, int64(DefaultBalance), onDisk["alice"].Balance)
}

func TestFileStoreLookupDoesNotCreate(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data), "lookup must not materialize a record")

	rec := NewUserRecord()
	rec.Balance = 42
	require.NoError(t, store.Write(ctx, "alice", rec))

	got, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Balance)
}

func TestFileStoreWriteRoundTrip(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	rec := NewUserRecord()
	rec.Balance = 42
	rec.AddItem("shiny_rock", 2, 1700000000000)
	require.NoError(t, store.Write(ctx, "alice", rec))

	got, err := store.Read(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Balance)
	assert.Equal(t, 2, got.ItemQuantity("shiny_rock"))
	assert.Equal(t, int64(1700000000000), got.Inventory[0].Acquired)
}

func TestFileStoreWritePairPersistsBoth(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	alice := NewUserRecord()
	alice.Balance = 10
	bob := NewUserRecord()
	bob.Balance = 20
	require.NoError(t, store.WritePair(ctx, "alice", alice, "bob", bob))

	gotAlice, err := store.Read(ctx, "alice")
	require.NoError(t, err)
	gotBob, err := store.Read(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(10), gotAlice.Balance)
	assert.Equal(t, int64(20), gotBob.Balance)
}

func TestFileStoreKeepsForeignRecordFields(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	seed := `{"alice": {"balance": 100, "inventory": [], "fishing": {"casts": 7}}}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	rec, err := store.Read(ctx, "alice")
	require.NoError(t, err)
	rec.Balance = 150
	require.NoError(t, store.Write(ctx, "alice", rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var obj map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.JSONEq(t, `{"casts": 7}`, string(obj["alice"]["fishing"]))
	assert.JSONEq(t, `150`, string(obj["alice"]["balance"]))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	store, path := newTestFileStore(t)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := store.Read(context.Background(), "alice")
	assert.Error(t, err)
}
