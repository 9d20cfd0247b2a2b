package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func weight(v float64) *float64 {
	return &v
}

func TestLoadEmptyStore(t *testing.T) {
	store := NewStore(newMemoryKV())

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadMalformedJSON(t *testing.T) {
	kv := newMemoryKV()
	kv.data[StorageKey] = "{not json"
	store := NewStore(kv)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(newMemoryKV())
	ctx := context.Background()

	rows := []Record{
		{Name: "Ginger", Part: "root", WeightBeforeDry: weight(12.5)},
		{Name: "Licorice", Part: "root"},
	}
	require.NoError(t, store.Save(ctx, rows))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Ginger", loaded[0].Name)
	require.NotNil(t, loaded[0].WeightBeforeDry)
	assert.Equal(t, 12.5, *loaded[0].WeightBeforeDry)
	assert.Nil(t, loaded[1].WeightBeforeDry)
}

func TestSaveNilStoresEmptyArray(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, nil))
	assert.Equal(t, "[]", kv.data[StorageKey])
}

func TestSaveReplacesNotMerges(t *testing.T) {
	store := NewStore(newMemoryKV())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Record{{Name: "Ginger", Part: "root"}}))
	require.NoError(t, store.Save(ctx, []Record{{Name: "Licorice", Part: "root"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Licorice", loaded[0].Name)
}

func TestEnsureSeedOnlyWhenEmpty(t *testing.T) {
	store := NewStore(newMemoryKV())
	ctx := context.Background()

	seeded, err := store.EnsureSeed(ctx, []Record{{Name: "Ginger", Part: "root"}})
	require.NoError(t, err)
	assert.True(t, seeded)

	// A second seed with different data must not overwrite.
	seeded, err = store.EnsureSeed(ctx, []Record{{Name: "Licorice", Part: "root"}})
	require.NoError(t, err)
	assert.False(t, seeded)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Ginger", loaded[0].Name)
}

func TestEnsureSeedEmptySeedIsNoop(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv)

	seeded, err := store.EnsureSeed(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.NotContains(t, kv.data, StorageKey)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ginger", Normalize("  GinGer "))
	assert.Equal(t, "", Normalize("   "))
}
