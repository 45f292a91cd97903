package golang

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations"
)

// DefaultDirectHosts are hosts whose module paths are host/owner/name.
var DefaultDirectHosts = []string{"github.com"}

// DefaultVanityHosts are hosts that serve go-import markers for their
// module paths.
var DefaultVanityHosts = []string{
	"golang.org",
	"google.golang.org",
	"gopkg.in",
	"go.uber.org",
	"go.opentelemetry.io",
	"go.etcd.io",
	"go.mongodb.org",
	"k8s.io",
	"sigs.k8s.io",
	"cloud.google.com",
	"gotest.tools",
	"honnef.co",
	"mvdan.cc",
	"gorm.io",
}

var goImportContent = regexp.MustCompile(`<meta\s+name=["']go-import["']\s+content=["']([^"']+)["']`)

// ImportResolver maps requirement strings to canonical identifiers. It
// implements [deps.IdentifierResolver].
//
// Direct hosts are resolved syntactically. Vanity hosts are resolved by
// fetching https://<path>?go-get=1 once per path (results are memoized and
// cached) and reading the go-import marker. Any other host is unsupported.
type ImportResolver struct {
	client *integrations.Client
	direct map[string]bool
	vanity map[string]bool

	// pageURL builds the vanity lookup URL for a module path.
	pageURL func(path string) string

	group   singleflight.Group
	mu      sync.RWMutex
	imports map[string]goImport
}

// goImport is the first go-import marker of a vanity page: the import path
// prefix it covers and the repository serving that prefix.
type goImport struct {
	Root     string `json:"root"`
	Location string `json:"location"`
}

// subdir returns path's directory below the marker root, "" when path is
// the root itself.
func (g goImport) subdir(path string) (string, error) {
	switch {
	case path == g.Root:
		return "", nil
	case strings.HasPrefix(path, g.Root+"/"):
		return strings.TrimPrefix(path, g.Root+"/"), nil
	default:
		return "", deperrors.New(deperrors.ErrCodeResolution,
			"go-import marker for %s names unrelated prefix %q", path, g.Root)
	}
}

// NewImportResolver creates a resolver. Nil host lists select
// [DefaultDirectHosts] and [DefaultVanityHosts]. client performs the vanity
// page lookups and may be nil when no vanity hosts are used.
func NewImportResolver(client *integrations.Client, directHosts, vanityHosts []string) *ImportResolver {
	if directHosts == nil {
		directHosts = DefaultDirectHosts
	}
	if vanityHosts == nil {
		vanityHosts = DefaultVanityHosts
	}
	return &ImportResolver{
		client:  client,
		direct:  hostSet(directHosts),
		vanity:  hostSet(vanityHosts),
		pageURL: func(path string) string { return "https://" + path + "?go-get=1" },
		imports: make(map[string]goImport),
	}
}

func hostSet(hosts []string) map[string]bool {
	m := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = true
		}
	}
	return m
}

// Resolve implements [deps.IdentifierResolver].
func (r *ImportResolver) Resolve(ctx context.Context, requirement string) (deps.Identifier, error) {
	requirement = strings.TrimSpace(requirement)
	host, _, _ := strings.Cut(requirement, "/")
	host = strings.ToLower(host)

	switch {
	case r.direct[host]:
		return resolveDirect(requirement)
	case r.vanity[host]:
		return r.resolveVanity(ctx, requirement)
	default:
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeUnsupported,
			"unsupported host %q in %q", host, requirement)
	}
}

// resolveDirect splits host/owner/name@version.
func resolveDirect(requirement string) (deps.Identifier, error) {
	segments := strings.Split(requirement, "/")
	if len(segments) != 3 {
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat,
			"invalid requirement %q: want <host>/<owner>/<name>@<version>", requirement)
	}
	parts := strings.Split(segments[2], "@")
	if len(parts) != 2 {
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat,
			"invalid requirement %q: want <name>@<version> as last segment", requirement)
	}

	host, owner := segments[0], segments[1]
	name, version := parts[0], parts[1]
	if owner == "" || name == "" {
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat,
			"invalid requirement %q: empty owner or name", requirement)
	}
	source := host + "/" + owner + "/" + name
	if err := validate(source, version); err != nil {
		return deps.Identifier{}, err
	}

	return deps.Identifier{
		Path:    source,
		Name:    name,
		Owner:   owner,
		Version: version,
		Source:  source,
	}, nil
}

// ParseRoot validates a root argument. Roots must use the direct scheme
// <host>/<owner>/<name>@<version> on one of directHosts (nil selects
// [DefaultDirectHosts]); no network access is needed.
func ParseRoot(arg string, directHosts []string) (deps.Identifier, error) {
	if directHosts == nil {
		directHosts = DefaultDirectHosts
	}
	arg = strings.TrimSpace(arg)
	host, _, _ := strings.Cut(arg, "/")
	if !hostSet(directHosts)[strings.ToLower(host)] {
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat,
			"invalid argument %q: want <host>/<owner>/<name>@<version> with host one of %s",
			arg, strings.Join(directHosts, ", "))
	}
	return resolveDirect(arg)
}

func (r *ImportResolver) resolveVanity(ctx context.Context, requirement string) (deps.Identifier, error) {
	parts := strings.Split(requirement, "@")
	if len(parts) != 2 {
		return deps.Identifier{}, deperrors.New(deperrors.ErrCodeInvalidFormat,
			"invalid requirement %q: want <path>@<version>", requirement)
	}
	path, version := parts[0], parts[1]
	if err := validate(path, version); err != nil {
		return deps.Identifier{}, err
	}

	imp, err := r.lookup(ctx, path)
	if err != nil {
		return deps.Identifier{}, err
	}

	owner, name, err := splitSource(imp.Location)
	if err != nil {
		return deps.Identifier{}, err
	}
	subdir, err := imp.subdir(path)
	if err != nil {
		return deps.Identifier{}, err
	}
	return deps.Identifier{
		Path:    path,
		Name:    name,
		Owner:   owner,
		Version: version,
		Source:  imp.Location,
		Subdir:  subdir,
	}, nil
}

// lookup returns the go-import marker of a vanity path, fetching each path
// at most once per resolver.
func (r *ImportResolver) lookup(ctx context.Context, path string) (goImport, error) {
	r.mu.RLock()
	imp, ok := r.imports[path]
	r.mu.RUnlock()
	if ok {
		return imp, nil
	}

	v, err, _ := r.group.Do(path, func() (any, error) {
		imp, err := r.fetchImport(ctx, path)
		if err != nil {
			return goImport{}, err
		}
		r.mu.Lock()
		r.imports[path] = imp
		r.mu.Unlock()
		return imp, nil
	})
	if err != nil {
		return goImport{}, err
	}
	return v.(goImport), nil
}

func (r *ImportResolver) fetchImport(ctx context.Context, path string) (goImport, error) {
	if r.client == nil {
		return goImport{}, deperrors.New(deperrors.ErrCodeResolution, "no HTTP client for vanity path %s", path)
	}

	var imp goImport
	err := r.client.Cached(ctx, "import:"+path, false, &imp, func() error {
		page, err := r.client.GetPage(ctx, r.pageURL(path))
		if err != nil {
			return err
		}
		if page.Status < 200 || page.Status >= 400 {
			return deperrors.New(deperrors.ErrCodeResolution, "%s answered status %d", path, page.Status)
		}
		found, ok := findGoImport(page.Body)
		if !ok {
			return deperrors.New(deperrors.ErrCodeResolution, "no go-import marker for %s", path)
		}
		imp = found
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return goImport{}, ctx.Err()
		}
		if deperrors.GetCode(err) == deperrors.ErrCodeResolution {
			return goImport{}, err
		}
		return goImport{}, deperrors.Wrap(deperrors.ErrCodeResolution, err, "resolve vanity path %s", path)
	}
	return imp, nil
}

// findGoImport returns the first go-import marker in body with its
// repository location stripped of scheme. Tags may span several lines.
func findGoImport(body string) (goImport, bool) {
	for _, m := range goImportContent.FindAllStringSubmatch(body, -1) {
		fields := strings.Fields(m[1])
		if len(fields) < 2 {
			continue
		}
		loc := integrations.NormalizeRepoURL(strings.Trim(fields[len(fields)-1], `"'>/`))
		if loc != "" {
			return goImport{Root: fields[0], Location: loc}, true
		}
	}
	return goImport{}, false
}

// splitSource splits host/owner/name (or host/name) into owner and name.
// Deeper locations keep the last segment as name and the middle as owner.
func splitSource(source string) (owner, name string, err error) {
	segments := strings.Split(source, "/")
	switch {
	case len(segments) < 2 || segments[len(segments)-1] == "":
		return "", "", deperrors.New(deperrors.ErrCodeResolution, "unusable go-import location %q", source)
	case len(segments) == 2:
		return "", segments[1], nil
	default:
		return strings.Join(segments[1:len(segments)-1], "/"), segments[len(segments)-1], nil
	}
}

func validate(path, version string) error {
	if err := deperrors.ValidateModulePath(path); err != nil {
		return err
	}
	if version == "" || strings.ContainsAny(version, " \t/") {
		return deperrors.New(deperrors.ErrCodeInvalidFormat, "invalid version %q for %s", version, path)
	}
	return nil
}
