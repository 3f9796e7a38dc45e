package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	common_models "go-analytics/internal/common/models"
)

var namePattern = regexp.MustCompile(`^chart_\d{8}_\d{6}_[0-9a-f]{8}\.png$`)

func TestNewName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))
	name := NewName("chart", ".png", now)
	if !namePattern.MatchString(name) {
		t.Fatalf("unexpected name %q", name)
	}
	if name[6:21] != "20240309_130507" {
		t.Errorf("timestamp should be UTC, got %q", name[6:21])
	}
}

func TestLocalStorePutIsExclusive(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	path, err := store.Put(ctx, "chart_a.png", []byte("first"), ContentTypePNG)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "chart_a.png", []byte("second"), ContentTypePNG); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "first" {
		t.Errorf("existing artifact was touched: %q %v", data, err)
	}

	got, contentType, err := store.Get(ctx, "chart_a.png")
	if err != nil || string(got) != "first" || contentType != ContentTypePNG {
		t.Errorf("get = %q %q %v", got, contentType, err)
	}
}

func TestLocalStoreGet(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())

	if _, _, err := store.Get(context.Background(), "missing.png"); !errors.Is(err, common_models.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	for _, name := range []string{"../etc/passwd", "a/b.png", "", ".hidden"} {
		if _, _, err := store.Get(context.Background(), name); !errors.Is(err, common_models.ErrInvalidRequest) {
			t.Errorf("%q: expected InvalidRequest, got %v", name, err)
		}
	}
}

// collidingStore reports ErrExists for the first n puts.
type collidingStore struct {
	collisions int
	puts       int
	names      []string
}

func (s *collidingStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	s.puts++
	s.names = append(s.names, name)
	if s.puts <= s.collisions {
		return "", ErrExists
	}
	return "mem/" + name, nil
}

func (s *collidingStore) Get(ctx context.Context, name string) ([]byte, string, error) {
	return nil, "", nil
}

func (s *collidingStore) Type() string { return "memory" }

func TestPutUniqueRegeneratesOnCollision(t *testing.T) {
	store := &collidingStore{collisions: 2}
	name, path, err := PutUnique(context.Background(), store, "chart", ".png", []byte("x"), ContentTypePNG, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.puts != 3 {
		t.Errorf("puts = %d, want 3", store.puts)
	}
	if name != store.names[2] || path != "mem/"+name {
		t.Errorf("returned %q %q, names tried %v", name, path, store.names)
	}

	store = &collidingStore{collisions: maxNameAttempts}
	if _, _, err := PutUnique(context.Background(), store, "chart", ".png", nil, ContentTypePNG, time.Now()); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists after exhausting attempts, got %v", err)
	}
}

func TestPutUniqueConcurrentDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalStore(dir)
	now := time.Now()

	const n = 20
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, _, err := PutUnique(context.Background(), store, "chart", ".png", []byte{byte(i)}, ContentTypePNG, now)
			if err != nil {
				t.Errorf("put %d: %v", i, err)
				return
			}
			names[i] = name
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate name %s", name)
		}
		seen[name] = true
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != n {
		t.Errorf("files on disk = %d, want %d", len(entries), n)
	}
	for _, e := range entries {
		if !namePattern.MatchString(filepath.Base(e.Name())) {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}
