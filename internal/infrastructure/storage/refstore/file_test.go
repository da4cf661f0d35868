package refstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/pkg/logger"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bill_refs.json")
	store, err := NewFileStore(path, logger.Default())
	require.NoError(t, err)
	return store, path
}

func sampleRefs(number int64) map[billtype.BillType]reference.Reference {
	now := time.Now().UTC()
	return map[billtype.BillType]reference.Reference{
		billtype.HR: {BillType: billtype.HR, Number: number, CreatedAt: now, UpdatedAt: now},
		billtype.S:  {BillType: billtype.S, Number: 3, CreatedAt: now, UpdatedAt: now},
	}
}

func TestLoadMissingFileIsEmptyMapping(t *testing.T) {
	store, _ := newFileStore(t)
	refs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	require.NoError(t, store.Save(ctx, sampleRefs(7)))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(7), loaded[billtype.HR].Number)
	assert.Equal(t, int64(3), loaded[billtype.S].Number)
	assert.False(t, loaded[billtype.HR].CreatedAt.IsZero())
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	require.NoError(t, store.Save(ctx, sampleRefs(1)))
	require.NoError(t, store.Save(ctx, sampleRefs(2)))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded[billtype.HR].Number)
}

func TestLoadCorruptFileIsFatal(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{\"hr\": {\"reference_number\":"), 0o644))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCorruptStore(err))
}

func TestLoadRejectsNegativeNumbers(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"hr": -4}`), 0o644))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCorruptStore(err))
}

func TestLoadLegacyBareIntegerFormat(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"hr": 41, "s": 2}`), 0o644))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(41), loaded[billtype.HR].Number)
	assert.Equal(t, int64(2), loaded[billtype.S].Number)
}

func TestLoadSkipsUnknownBillTypes(t *testing.T) {
	store, path := newFileStore(t)
	content := `{"hr": 5, "hb": 99}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(5), loaded[billtype.HR].Number)
}

func TestCrashBetweenTempWriteAndRename(t *testing.T) {
	// A stale temp file next to the live store (the residue of a crash before
	// the rename) must not affect what Load observes.
	ctx := context.Background()
	store, path := newFileStore(t)
	require.NoError(t, store.Save(ctx, sampleRefs(9)))

	stale := filepath.Join(filepath.Dir(path), ".refs-crash.tmp")
	require.NoError(t, os.WriteFile(stale, []byte(`{"hr": {"ref`), 0o644))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), loaded[billtype.HR].Number)
}

func TestSaveDoesNotLeaveTempFilesBehind(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)
	require.NoError(t, store.Save(ctx, sampleRefs(1)))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestSaveRejectsUnknownBillType(t *testing.T) {
	store, _ := newFileStore(t)
	err := store.Save(context.Background(), map[billtype.BillType]reference.Reference{
		billtype.BillType("bogus"): {Number: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidBillType))
}
