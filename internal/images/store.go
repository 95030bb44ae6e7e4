package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	ErrTooLarge = errors.New("images: payload exceeds size limit")
	ErrNotImage = errors.New("images: payload is not an image")
)

// imagePattern matches the extensions List reports.
const imagePattern = "*.{png,jpg,jpeg,gif,webp,svg,avif}"

// fetchRetries bounds the remote fetch retry loop.
const fetchRetries = 3

// FileInfo describes one stored image.
type FileInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Store persists uploaded images under a single directory and serves the
// listing the editor's asset picker reads.
type Store struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
	client   *retryablehttp.Client
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, maxBytes int64, log *zap.Logger) *Store {
	client := retryablehttp.NewClient()
	client.RetryMax = fetchRetries
	client.Logger = nil
	return &Store{dir: dir, maxBytes: maxBytes, log: log, client: client}
}

// Save validates and writes raw image bytes, returning the stored path.
// declaredType is the client's claimed MIME type; the server-side sniff is
// authoritative and both must name an image.
func (s *Store) Save(data []byte, declaredType string) (string, error) {
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	sniffed := mimetype.Detect(data)
	if !strings.HasPrefix(sniffed.String(), "image/") {
		return "", ErrNotImage
	}
	if declaredType != "" && !strings.HasPrefix(declaredType, "image/") {
		return "", fmt.Errorf("%w: declared type %q", ErrNotImage, declaredType)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + sniffed.Extension()
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	s.log.Info("image stored",
		zap.String("path", path),
		zap.String("type", sniffed.String()),
		zap.Int("bytes", len(data)))
	return path, nil
}

// Fetch downloads a remote image with bounded retries and stores it under
// the same validation rules as a direct upload.
func (s *Store) Fetch(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	// Read one byte past the cap so oversized bodies are detected without
	// buffering them whole.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	return s.Save(data, resp.Header.Get("Content-Type"))
}

// List walks the store directory and returns every image file, sorted by
// path for a stable listing.
func (s *Store) List() ([]FileInfo, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return []FileInfo{}, nil
	}

	var (
		mu  sync.Mutex
		out []FileInfo
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ok, matchErr := doublestar.Match(imagePattern, strings.ToLower(d.Name()))
		if matchErr != nil || !ok {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		mu.Lock()
		out = append(out, FileInfo{Path: path, Name: d.Name(), Size: info.Size()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk upload dir: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
