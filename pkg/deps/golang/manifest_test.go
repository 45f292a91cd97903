package golang

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/github"
	"github.com/matzehuels/deptree/pkg/integrations/goproxy"
)

func TestRefForVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"v1.0.0", "v1.0.0"},
		{"v2.4.0+incompatible", "v2.4.0"},
		{"v1.2.3-rc.1", "v1.2.3-rc.1"},
		{"v0.0.0-20191109021931-daa7c04131f5", "daa7c04131f5"},
		{"v1.2.4-0.20191109021931-daa7c04131f5", "daa7c04131f5"},
		{"v1.2.3-pre.0.20191109021931-daa7c04131f5", "daa7c04131f5"},
		{"v0.0.0-20191109021931-daa7c04131f5+incompatible", "daa7c04131f5"},
		{"main", "main"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := RefForVersion(tt.version); got != tt.want {
				t.Errorf("RefForVersion(%q) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

func TestRefForSubdirModule(t *testing.T) {
	tests := []struct {
		id       deps.Identifier
		wantPath string
		wantRef  string
	}{
		{deps.Identifier{Version: "v1.20.0"}, "go.mod", "v1.20.0"},
		{deps.Identifier{Subdir: "trace", Version: "v1.20.0"}, "trace/go.mod", "trace/v1.20.0"},
		{deps.Identifier{Subdir: "exporters/otlp", Version: "v0.44.0"}, "exporters/otlp/go.mod", "exporters/otlp/v0.44.0"},
		{deps.Identifier{Subdir: "trace", Version: "v0.0.0-20191109021931-daa7c04131f5"}, "trace/go.mod", "daa7c04131f5"},
	}
	for _, tt := range tests {
		if got := manifestPath(tt.id); got != tt.wantPath {
			t.Errorf("manifestPath(%+v) = %q, want %q", tt.id, got, tt.wantPath)
		}
		if got := refFor(tt.id); got != tt.wantRef {
			t.Errorf("refFor(%+v) = %q, want %q", tt.id, got, tt.wantRef)
		}
	}
}

func TestManifestFetcherRouting(t *testing.T) {
	var githubRef string
	ghServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/foo/bar/contents/go.mod":
			githubRef = r.URL.Query().Get("ref")
			json.NewEncoder(w).Encode(map[string]string{
				"type":     "file",
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString([]byte("module github.com/foo/bar\n")),
			})
		case "/repos/foo/multi/contents/go.mod":
			w.Write([]byte(`[{"type":"file"},{"type":"file"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ghServer.Close()

	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/golang.org/x/net/@v/v0.19.0.mod" {
			w.Write([]byte("module golang.org/x/net\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer proxyServer.Close()

	f := testManifestFetcher(t, ghServer.URL, proxyServer.URL)
	ctx := context.Background()

	text, err := f.FetchManifest(ctx, deps.Identifier{
		Path: "github.com/foo/bar", Name: "bar", Owner: "foo",
		Version: "v0.0.0-20191109021931-daa7c04131f5", Source: "github.com/foo/bar",
	})
	if err != nil {
		t.Fatalf("github FetchManifest: %v", err)
	}
	if text != "module github.com/foo/bar\n" {
		t.Errorf("github text = %q", text)
	}
	if githubRef != "daa7c04131f5" {
		t.Errorf("ref = %q, want commit hash", githubRef)
	}

	text, err = f.FetchManifest(ctx, deps.Identifier{
		Path: "golang.org/x/net", Name: "net", Version: "v0.19.0", Source: "go.googlesource.com/net",
	})
	if err != nil {
		t.Fatalf("proxy FetchManifest: %v", err)
	}
	if text != "module golang.org/x/net\n" {
		t.Errorf("proxy text = %q", text)
	}

	failures := []deps.Identifier{
		{Path: "github.com/foo/missing", Name: "missing", Owner: "foo", Version: "v1.0.0", Source: "github.com/foo/missing"},
		{Path: "github.com/foo/multi", Name: "multi", Owner: "foo", Version: "v1.0.0", Source: "github.com/foo/multi"},
		{Path: "golang.org/x/gone", Name: "gone", Version: "v1.0.0", Source: "go.googlesource.com/gone"},
	}
	for _, id := range failures {
		if _, err := f.FetchManifest(ctx, id); !deperrors.Is(err, deperrors.ErrCodeManifestFetch) {
			t.Errorf("FetchManifest(%s) err = %v, want MANIFEST_FETCH_FAILED", id, err)
		}
	}
}

func TestManifestFetcherWithoutClients(t *testing.T) {
	f := NewManifestFetcher(nil, nil)
	ids := []deps.Identifier{
		{Name: "bar", Owner: "foo", Version: "v1", Source: "github.com/foo/bar"},
		{Name: "net", Version: "v1", Source: "go.googlesource.com/net"},
	}
	for _, id := range ids {
		if _, err := f.FetchManifest(context.Background(), id); !deperrors.Is(err, deperrors.ErrCodeManifestFetch) {
			t.Errorf("err = %v, want MANIFEST_FETCH_FAILED", err)
		}
	}
}

func testGitHub(t *testing.T, serverURL string) *github.Client {
	t.Helper()
	gh := github.NewClient(cache.NewNullCache(), "", time.Hour)
	gh.SetBaseURL(serverURL)
	gh.SetRetryPolicy(1, time.Millisecond)
	return gh
}

func testManifestFetcher(t *testing.T, githubURL, proxyURL string) *ManifestFetcher {
	t.Helper()
	proxy := goproxy.NewClient(cache.NewNullCache(), proxyURL, time.Hour)
	proxy.SetRetryPolicy(1, time.Millisecond)
	return NewManifestFetcher(testGitHub(t, githubURL), proxy)
}
