package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pngBytes is a minimal valid PNG header plus filler, enough for sniffing.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	return NewStore(t.TempDir(), maxBytes, zap.NewNop())
}

func TestSaveSniffsAndStores(t *testing.T) {
	s := newTestStore(t, 1<<20)

	path, err := s.Save(pngBytes, "image/png")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := newTestStore(t, 1<<20)

	_, err := s.Save([]byte("<!doctype html><p>nope</p>"), "image/png")
	assert.ErrorIs(t, err, ErrNotImage, "the sniff is authoritative over the declared type")

	_, err = s.Save(pngBytes, "application/pdf")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestSaveEnforcesSizeCap(t *testing.T) {
	s := newTestStore(t, 16)

	_, err := s.Save(pngBytes, "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchStoresRemoteImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	s := newTestStore(t, 1<<20)
	path, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	big := append(append([]byte{}, pngBytes...), make([]byte, 1024)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big)
	}))
	defer srv.Close()

	s := newTestStore(t, 128)
	_, err := s.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestListFiltersToImages(t *testing.T) {
	s := newTestStore(t, 1<<20)
	_, err := s.Save(pngBytes, "image/png")
	require.NoError(t, err)

	// Stray non-image files in the directory stay out of the listing.
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "notes.txt"), []byte("x"), 0o644))

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".png", filepath.Ext(files[0].Name))
	assert.Equal(t, int64(len(pngBytes)), files[0].Size)
}

func TestListEmptyDirIsNotAnError(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-created"), 1<<20, zap.NewNop())

	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
