package golang

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
)

func TestLicenseFetcher(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/repos/foo/bar/license":
			w.Write([]byte(`{"license":{"key":"mit","name":"MIT License","spdx_id":"MIT"}}`))
		case "/repos/foo/limited/license":
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewLicenseFetcher(testGitHub(t, server.URL))
	ctx := context.Background()

	name, err := f.FetchLicense(ctx, deps.Identifier{Name: "bar", Owner: "foo", Source: "github.com/foo/bar"})
	if err != nil || name != "MIT License" {
		t.Errorf("FetchLicense = %q, %v; want MIT License", name, err)
	}

	_, err = f.FetchLicense(ctx, deps.Identifier{Name: "none", Owner: "foo", Source: "github.com/foo/none"})
	if !deperrors.Is(err, deperrors.ErrCodeLicenseNotFound) {
		t.Errorf("missing license err = %v, want LICENSE_NOT_FOUND", err)
	}

	_, err = f.FetchLicense(ctx, deps.Identifier{Name: "limited", Owner: "foo", Source: "github.com/foo/limited"})
	if !deperrors.Is(err, deperrors.ErrCodeRateLimited) {
		t.Errorf("rate limited err = %v, want RATE_LIMITED", err)
	}
}

func TestLicenseFetcherSkipsNonGitHub(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewLicenseFetcher(testGitHub(t, server.URL))
	ids := []deps.Identifier{
		{Name: "net", Owner: "", Version: "v1", Source: "go.googlesource.com/net"},
		{Name: "bar", Owner: "foo", Version: "v1", Source: "codeberg.org/foo/bar"},
	}
	for _, id := range ids {
		name, err := f.FetchLicense(context.Background(), id)
		if err != nil || name != deps.UnknownLicense {
			t.Errorf("FetchLicense(%s) = %q, %v; want unknown", id.Source, name, err)
		}
	}
	if requests.Load() != 0 {
		t.Error("non-GitHub modules must not hit the license API")
	}

	if name, _ := NewLicenseFetcher(nil).FetchLicense(context.Background(), ids[1]); name != deps.UnknownLicense {
		t.Errorf("nil client = %q, want unknown", name)
	}
}
