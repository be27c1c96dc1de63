package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pyast/internal/cache"
	"pyast/internal/convert"
	"pyast/internal/diag"
)

// memStore is an in-memory cache.Store that counts lookups.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	m.hits++
	return v, nil
}

func (m *memStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func runOK(t *testing.T, jobs []Job, opts Options) []Result {
	t.Helper()
	results, err := Run(context.Background(), jobs, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	return results
}

func TestRunIsolatesFailures(t *testing.T) {
	jobs := []Job{
		{Name: "ok.py", Source: "x = 1\n"},
		{Name: "bad.py", Source: "def (:\n"},
		{Name: "also_ok.py", Source: "print(x)\n"},
	}
	results := runOK(t, jobs, Options{Version: "3.12", Workers: 2})

	for i, r := range results {
		if r.Name != jobs[i].Name {
			t.Errorf("result %d: name %q, want %q", i, r.Name, jobs[i].Name)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	var listErr *diag.ListError
	if !errors.As(results[1].Err, &listErr) {
		t.Errorf("expected a syntax error, got %v", results[1].Err)
	}
	if results[1].JSON != nil {
		t.Error("a failed job must not carry output")
	}
	if !strings.Contains(string(results[0].JSON), `"componentId":"executable"`) {
		t.Errorf("unexpected output: %s", results[0].JSON)
	}
}

func TestRunMatchesSingleConversion(t *testing.T) {
	job := Job{Name: "a.py", Source: "for i in range(3):\n    total += i\n"}
	conv, err := convert.New("3.12")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want, err := Convert(conv, job)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	jobs := make([]Job, 16)
	for i := range jobs {
		jobs[i] = job
	}
	for _, r := range runOK(t, jobs, Options{Version: "3.12", Workers: 4}) {
		if string(r.JSON) != string(want) {
			t.Fatalf("parallel output differs:\n got: %s\nwant: %s", r.JSON, want)
		}
	}
}

func TestRunRejectsBadVersion(t *testing.T) {
	_, err := Run(context.Background(), []Job{{Name: "a.py"}}, Options{Version: "2.7"})
	if !errors.Is(err, convert.ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []Job{{Name: "a.py", Source: "x = 1\n"}}, Options{Version: "3"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunUsesCache(t *testing.T) {
	store := newMemStore()
	jobs := []Job{{Name: "a.py", Source: "x = 1\n"}, {Name: "bad.py", Source: "x = (\n"}}

	first := runOK(t, jobs, Options{Version: "3.12", Cache: store})
	if first[0].Cached || store.hits != 0 {
		t.Fatal("first run must convert")
	}
	if len(store.data) != 1 {
		t.Errorf("failures must not be cached; store has %d entries", len(store.data))
	}

	second := runOK(t, jobs, Options{Version: "3.12", Cache: store})
	if !second[0].Cached || string(second[0].JSON) != string(first[0].JSON) {
		t.Errorf("second run: cached=%v json=%s", second[0].Cached, second[0].JSON)
	}
	if second[1].Err == nil {
		t.Error("a cached run must still report the failing job")
	}

	other := runOK(t, jobs[:1], Options{Version: "3.11", Cache: store})
	if other[0].Cached {
		t.Error("a different version must not hit the cache")
	}
}

func TestRunWithBoltCache(t *testing.T) {
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	jobs := []Job{{Name: "a.py", Source: "def f(x):\n    return x\n"}}
	runOK(t, jobs, Options{Version: "3.12", Cache: db})
	results := runOK(t, jobs, Options{Version: "3.12", Cache: db})
	if !results[0].Cached {
		t.Error("expected a cache hit from the bbolt store")
	}
}

func TestCountNodes(t *testing.T) {
	conv, err := convert.New("3.12")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	program, err := conv.Source("x = 1\n", "a.py")
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	// actor, listener, action, multiAssignment, variable, literal
	if n := countNodes(program); n != 6 {
		t.Errorf("countNodes = %d, want 6", n)
	}
}
