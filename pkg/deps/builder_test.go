package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	deperrors "github.com/matzehuels/deptree/pkg/errors"
)

// fakeResolver maps "github.com/owner/name@version" onto an Identifier.
type fakeResolver struct {
	fail map[string]error
}

func (r *fakeResolver) Resolve(_ context.Context, req string) (Identifier, error) {
	if err := r.fail[req]; err != nil {
		return Identifier{}, err
	}
	path, version, ok := strings.Cut(req, "@")
	if !ok {
		return Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat, "bad requirement %q", req)
	}
	parts := strings.Split(path, "/")
	return Identifier{
		Path:    path,
		Name:    parts[len(parts)-1],
		Owner:   parts[1],
		Version: version,
		Source:  path,
	}, nil
}

// fakeManifests serves newline-separated requirement lists keyed by
// Identifier.Key and records fetch counts and peak parallelism.
type fakeManifests struct {
	files map[string]string
	delay time.Duration

	mu       sync.Mutex
	fetches  map[string]int
	inFlight int
	peak     int
}

func (f *fakeManifests) FetchManifest(ctx context.Context, id Identifier) (string, error) {
	f.mu.Lock()
	if f.fetches == nil {
		f.fetches = make(map[string]int)
	}
	f.fetches[id.Key()]++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	text, ok := f.files[id.Key()]
	if !ok {
		return "", fmt.Errorf("no go.mod for %s", id.Key())
	}
	return text, nil
}

func (f *fakeManifests) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

var lineParser = ParserFunc(func(text string) ([]string, error) {
	var reqs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "!malformed" {
			return nil, deperrors.New(deperrors.ErrCodeInvalidManifest, "malformed requirement")
		}
		if line != "" {
			reqs = append(reqs, line)
		}
	}
	return reqs, nil
})

type fakeLicenses struct {
	names map[string]string
	err   error
}

func (f *fakeLicenses) FetchLicense(_ context.Context, id Identifier) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if name, ok := f.names[id.Owner+"/"+id.Name]; ok {
		return name, nil
	}
	return "", deperrors.New(deperrors.ErrCodeLicenseNotFound, "no license for %s/%s", id.Owner, id.Name)
}

func newTestBuilder(files map[string]string, opts Options) (*Builder, *fakeManifests) {
	m := &fakeManifests{files: files}
	l := &fakeLicenses{names: map[string]string{"foo/bar": "MIT", "baz/qux": "Apache-2.0"}}
	return NewBuilder(&fakeResolver{}, m, lineParser, l, opts), m
}

func TestBuildTwoLevelTree(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{
		"github.com/foo/bar@v1.0.0": "github.com/baz/qux@v2.0.0\n",
		"github.com/baz/qux@v2.0.0": "",
	}, Options{})

	root, err := b.Resolve(context.Background(), "github.com/foo/bar@v1.0.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := &Package{
		Name: "bar", Owner: "foo", Version: "v1.0.0", License: "MIT", Source: "github.com/foo/bar",
		Dependencies: []*Package{
			{Name: "qux", Owner: "baz", Version: "v2.0.0", License: "Apache-2.0", Source: "github.com/baz/qux"},
		},
	}
	assertTree(t, root, want)
}

func TestBuildDiamondSharesNode(t *testing.T) {
	b, m := newTestBuilder(map[string]string{
		"github.com/x/root@v1": "github.com/x/a@v1\ngithub.com/x/b@v1",
		"github.com/x/a@v1":    "github.com/x/c@v1",
		"github.com/x/b@v1":    "github.com/x/c@v1",
		"github.com/x/c@v1":    "",
	}, Options{})

	root, err := b.Resolve(context.Background(), "github.com/x/root@v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	a, bb := root.Dependencies[0], root.Dependencies[1]
	if a.Dependencies[0] != bb.Dependencies[0] {
		t.Error("a and b should share one c node")
	}
	if got := m.count("github.com/x/c@v1"); got != 1 {
		t.Errorf("c fetched %d times, want 1", got)
	}
	if got := Count(root); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
}

func TestBuildKeepsManifestOrderAndDuplicates(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{
		"github.com/x/root@v1": "github.com/x/z@v1\ngithub.com/x/a@v1\ngithub.com/x/z@v1",
		"github.com/x/a@v1":    "",
		"github.com/x/z@v1":    "",
	}, Options{})

	root, err := b.Resolve(context.Background(), "github.com/x/root@v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var names []string
	for _, d := range root.Dependencies {
		names = append(names, d.Name)
	}
	if got := strings.Join(names, ","); got != "z,a,z" {
		t.Errorf("dependency order = %s, want z,a,z", got)
	}
	if root.Dependencies[0] != root.Dependencies[2] {
		t.Error("duplicate requirement should reference the same node")
	}
}

func TestBuildUnknownLicense(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{"github.com/nobody/thing@v1": ""}, Options{})

	root, err := b.Resolve(context.Background(), "github.com/nobody/thing@v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if root.License != UnknownLicense {
		t.Errorf("License = %q, want %q", root.License, UnknownLicense)
	}
}

func TestBuildLicenseFailureIsFatal(t *testing.T) {
	m := &fakeManifests{files: map[string]string{"github.com/foo/bar@v1": ""}}
	l := &fakeLicenses{err: errors.New("connection reset")}
	b := NewBuilder(&fakeResolver{}, m, lineParser, l, Options{})

	root, err := b.Resolve(context.Background(), "github.com/foo/bar@v1")
	if root != nil || err == nil {
		t.Fatalf("Resolve = %v, %v; want nil, error", root, err)
	}
	if !deperrors.Is(err, deperrors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestBuildFailFast(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		resolver *fakeResolver
		wantCode deperrors.Code
	}{
		{
			name: "missing manifest",
			files: map[string]string{
				"github.com/x/root@v1": "github.com/x/a@v1\ngithub.com/x/b@v1",
				"github.com/x/a@v1":    "",
			},
			resolver: &fakeResolver{},
			wantCode: deperrors.ErrCodeManifestFetch,
		},
		{
			name: "malformed manifest",
			files: map[string]string{
				"github.com/x/root@v1": "github.com/x/a@v1",
				"github.com/x/a@v1":    "!malformed",
			},
			resolver: &fakeResolver{},
			wantCode: deperrors.ErrCodeInvalidManifest,
		},
		{
			name: "unsupported requirement",
			files: map[string]string{
				"github.com/x/root@v1": "bitbucket.org/x/a@v1",
			},
			resolver: &fakeResolver{fail: map[string]error{
				"bitbucket.org/x/a@v1": deperrors.New(deperrors.ErrCodeUnsupported, "unsupported host bitbucket.org"),
			}},
			wantCode: deperrors.ErrCodeUnsupported,
		},
		{
			name: "unresolvable requirement",
			files: map[string]string{
				"github.com/x/root@v1": "golang.org/x/sys@v0.1.0",
			},
			resolver: &fakeResolver{fail: map[string]error{
				"golang.org/x/sys@v0.1.0": errors.New("dial tcp: timeout"),
			}},
			wantCode: deperrors.ErrCodeResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManifests{files: tt.files}
			b := NewBuilder(tt.resolver, m, lineParser, &fakeLicenses{}, Options{})

			root, err := b.Resolve(context.Background(), "github.com/x/root@v1")
			if root != nil {
				t.Error("failed build must not return a tree")
			}
			if code := deperrors.GetCode(err); code != tt.wantCode {
				t.Errorf("code = %q (%v), want %q", code, err, tt.wantCode)
			}
		})
	}
}

func TestBuildCycle(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{
		"github.com/x/a@v1": "github.com/x/b@v1",
		"github.com/x/b@v1": "github.com/x/a@v1",
	}, Options{})

	_, err := b.Resolve(context.Background(), "github.com/x/a@v1")
	if !deperrors.Is(err, deperrors.ErrCodeCycle) {
		t.Fatalf("err = %v, want DEPENDENCY_CYCLE", err)
	}
	if !strings.Contains(err.Error(), "github.com/x/a@v1 -> github.com/x/b@v1 -> github.com/x/a@v1") {
		t.Errorf("cycle path missing from %q", err)
	}
}

func TestBuildSameModuleDifferentVersionsIsNotCycle(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{
		"github.com/x/a@v2": "github.com/x/b@v1",
		"github.com/x/b@v1": "github.com/x/a@v1",
		"github.com/x/a@v1": "",
	}, Options{})

	root, err := b.Resolve(context.Background(), "github.com/x/a@v2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := Count(root); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestBuildLimits(t *testing.T) {
	chain := map[string]string{
		"github.com/x/a@v1": "github.com/x/b@v1",
		"github.com/x/b@v1": "github.com/x/c@v1",
		"github.com/x/c@v1": "",
	}

	t.Run("depth", func(t *testing.T) {
		b, _ := newTestBuilder(chain, Options{MaxDepth: 1})
		_, err := b.Resolve(context.Background(), "github.com/x/a@v1")
		if !deperrors.Is(err, deperrors.ErrCodeLimitExceeded) {
			t.Errorf("err = %v, want LIMIT_EXCEEDED", err)
		}
	})

	t.Run("depth at limit", func(t *testing.T) {
		b, _ := newTestBuilder(chain, Options{MaxDepth: 2})
		if _, err := b.Resolve(context.Background(), "github.com/x/a@v1"); err != nil {
			t.Errorf("Resolve: %v", err)
		}
	})

	t.Run("nodes", func(t *testing.T) {
		b, _ := newTestBuilder(chain, Options{MaxNodes: 2})
		_, err := b.Resolve(context.Background(), "github.com/x/a@v1")
		if !deperrors.Is(err, deperrors.ErrCodeLimitExceeded) {
			t.Errorf("err = %v, want LIMIT_EXCEEDED", err)
		}
	})
}

func TestBuildConcurrencyBound(t *testing.T) {
	files := map[string]string{}
	var reqs []string
	for i := range 10 {
		req := fmt.Sprintf("github.com/x/m%d@v1", i)
		reqs = append(reqs, req)
		files[req] = ""
	}
	files["github.com/x/root@v1"] = strings.Join(reqs, "\n")

	for _, limit := range []int{1, 3} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			m := &fakeManifests{files: files, delay: 5 * time.Millisecond}
			b := NewBuilder(&fakeResolver{}, m, lineParser, &fakeLicenses{}, Options{Concurrency: limit})

			root, err := b.Resolve(context.Background(), "github.com/x/root@v1")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if len(root.Dependencies) != 10 {
				t.Errorf("got %d dependencies, want 10", len(root.Dependencies))
			}
			if m.peak > limit {
				t.Errorf("peak parallel fetches = %d, want <= %d", m.peak, limit)
			}
		})
	}
}

func TestBuildContextCanceled(t *testing.T) {
	b, _ := newTestBuilder(map[string]string{"github.com/foo/bar@v1": ""}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Resolve(ctx, "github.com/foo/bar@v1"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildLogsProgress(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	logger := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	b, _ := newTestBuilder(map[string]string{"github.com/foo/bar@v1": ""}, Options{Logger: logger})
	if _, err := b.Resolve(context.Background(), "github.com/foo/bar@v1"); err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 || !strings.Contains(strings.Join(lines, "\n"), "resolved github.com/foo/bar@v1") {
		t.Errorf("progress lines = %q", lines)
	}
}

func assertTree(t *testing.T, got, want *Package) {
	t.Helper()
	if got.Name != want.Name || got.Owner != want.Owner || got.Version != want.Version ||
		got.License != want.License || got.Source != want.Source {
		t.Errorf("node = %+v, want %+v", *got, *want)
	}
	if len(got.Dependencies) != len(want.Dependencies) {
		t.Fatalf("%s: %d dependencies, want %d", got.Name, len(got.Dependencies), len(want.Dependencies))
	}
	for i := range want.Dependencies {
		assertTree(t, got.Dependencies[i], want.Dependencies[i])
	}
}
