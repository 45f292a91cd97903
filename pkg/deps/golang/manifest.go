package golang

import (
	"context"
	"regexp"
	"strings"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/github"
	"github.com/matzehuels/deptree/pkg/integrations/goproxy"
)

const (
	githubHost   = "github.com"
	manifestFile = "go.mod"
)

// pseudoVersion captures the commit hash of a pseudo-version such as
// v0.0.0-20191109021931-daa7c04131f5 or v1.2.4-0.20191109021931-daa7c04131f5.
var pseudoVersion = regexp.MustCompile(`^v[0-9]+\.[0-9]+\.[0-9]+-(?:.*\.)?[0-9]{14}-([0-9a-f]{12})$`)

// ManifestFetcher retrieves go.mod files. It implements [deps.ManifestFetcher].
//
// Modules hosted on GitHub are read through the contents API at the tag or
// commit named by the version; a module in a repository subdirectory reads
// <subdir>/go.mod at tag <subdir>/<version>. Everything else comes from the
// module proxy, addressed by the requirement's module path.
type ManifestFetcher struct {
	github *github.Client
	proxy  *goproxy.Client
}

// NewManifestFetcher creates a fetcher. Either client may be nil, in which
// case modules routed to it fail with MANIFEST_FETCH_FAILED.
func NewManifestFetcher(gh *github.Client, proxy *goproxy.Client) *ManifestFetcher {
	return &ManifestFetcher{github: gh, proxy: proxy}
}

// FetchManifest implements [deps.ManifestFetcher].
func (f *ManifestFetcher) FetchManifest(ctx context.Context, id deps.Identifier) (string, error) {
	if isGitHub(id) {
		if f.github == nil {
			return "", deperrors.New(deperrors.ErrCodeManifestFetch, "no GitHub client for %s", id)
		}
		text, err := f.github.FetchFile(ctx, id.Owner, id.Name, manifestPath(id), refFor(id))
		if err != nil {
			return "", deperrors.Wrap(deperrors.ErrCodeManifestFetch, err, "%s of %s", manifestFile, id)
		}
		return text, nil
	}

	if f.proxy == nil {
		return "", deperrors.New(deperrors.ErrCodeManifestFetch, "no module proxy client for %s", id)
	}
	path := id.Path
	if path == "" {
		path = id.Source
	}
	text, err := f.proxy.FetchGoMod(ctx, path, id.Version)
	if err != nil {
		return "", deperrors.Wrap(deperrors.ErrCodeManifestFetch, err, "%s of %s", manifestFile, id)
	}
	return text, nil
}

func isGitHub(id deps.Identifier) bool {
	host, _, _ := strings.Cut(id.Source, "/")
	return strings.EqualFold(host, githubHost) && id.Owner != "" && id.Name != ""
}

func manifestPath(id deps.Identifier) string {
	if id.Subdir == "" {
		return manifestFile
	}
	return id.Subdir + "/" + manifestFile
}

// refFor prefixes release tags of subdirectory modules with the directory,
// the way multi-module repositories tag them. Commit hashes are used as is.
func refFor(id deps.Identifier) string {
	ref := RefForVersion(id.Version)
	if id.Subdir == "" || pseudoVersion.MatchString(strings.TrimSuffix(id.Version, "+incompatible")) {
		return ref
	}
	return id.Subdir + "/" + ref
}

// RefForVersion maps a module version to the git ref holding its go.mod:
// the commit hash for pseudo-versions, the tag otherwise. A +incompatible
// suffix is dropped since it never appears in tag names.
func RefForVersion(version string) string {
	v := strings.TrimSuffix(version, "+incompatible")
	if deperrors.ValidateVersion(v) != nil {
		return v
	}
	if m := pseudoVersion.FindStringSubmatch(v); m != nil {
		return m[1]
	}
	return v
}
