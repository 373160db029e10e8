package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/valkyrie8787/llm-dictionary/internal/logger"
	"github.com/valkyrie8787/llm-dictionary/internal/ragcontext"
)

func TestImportBytesStoresTextVerbatim(t *testing.T) {
	store := ragcontext.NewMemoryStore()
	imp := New(store, logger.Discard())
	ctx := context.Background()

	content := "Seoul is the capital of Korea.\n서울은 한국의 수도입니다.\n"
	text, err := imp.ImportBytes(ctx, "notes.txt", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, content, text)

	stored, _ := store.Get(ctx)
	assert.Equal(t, content, stored)
}

func TestImportBytesReplacesPrevious(t *testing.T) {
	store := ragcontext.NewMemoryStore()
	imp := New(store, logger.Discard())
	ctx := context.Background()

	_, err := imp.ImportBytes(ctx, "a.txt", []byte("first"))
	require.NoError(t, err)
	_, err = imp.ImportBytes(ctx, "b.txt", []byte(""))
	require.NoError(t, err)

	has, _ := store.Has(ctx)
	assert.False(t, has)
}

func TestImportBytesInvalidPDFFallsBackToRaw(t *testing.T) {
	store := ragcontext.NewMemoryStore()
	imp := New(store, logger.Discard())

	text, err := imp.ImportBytes(context.Background(), "broken.PDF", []byte("not really a pdf"))
	require.NoError(t, err)
	assert.Equal(t, "not really a pdf", text)
}

func TestImportBytesStoreError(t *testing.T) {
	store := new(ragcontext.MockStore)
	store.On("Set", mock.Anything, "hello").Return(errors.New("redis down")).Once()

	imp := New(store, logger.Discard())
	_, err := imp.ImportBytes(context.Background(), "a.txt", []byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	store.AssertExpectations(t)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.md")
	require.NoError(t, os.WriteFile(path, []byte("# Trip notes"), 0o644))

	store := ragcontext.NewMemoryStore()
	imp := New(store, logger.Discard())

	text, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Trip notes", text)

	_, err = imp.ImportFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("doc.pdf"))
	assert.True(t, IsPDF("DOC.PDF"))
	assert.False(t, IsPDF("doc.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestWatchReimportsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	store := ragcontext.NewMemoryStore()
	imp := New(store, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- imp.Watch(ctx, path) }()

	current := func() string {
		text, _ := store.Get(context.Background())
		return text
	}

	assert.Eventually(t, func() bool { return current() == "v1" }, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.Eventually(t, func() bool { return current() == "v2" }, 2*time.Second, 20*time.Millisecond)

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("other"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "v2", current())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	imp := New(ragcontext.NewMemoryStore(), logger.Discard())
	err := imp.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "context.txt"))
	assert.Error(t, err)
}
