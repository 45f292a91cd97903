package golang

import (
	"context"
	"errors"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations"
	"github.com/matzehuels/deptree/pkg/integrations/github"
)

// LicenseFetcher looks up licenses through GitHub's license detection. It
// implements [deps.LicenseFetcher].
//
// Modules not hosted on GitHub, or without an owner, have no license API;
// they get [deps.UnknownLicense] without any request.
type LicenseFetcher struct {
	github *github.Client
}

// NewLicenseFetcher creates a fetcher backed by gh (may be nil).
func NewLicenseFetcher(gh *github.Client) *LicenseFetcher {
	return &LicenseFetcher{github: gh}
}

// FetchLicense implements [deps.LicenseFetcher].
func (f *LicenseFetcher) FetchLicense(ctx context.Context, id deps.Identifier) (string, error) {
	if f.github == nil || !isGitHub(id) {
		return deps.UnknownLicense, nil
	}

	name, err := f.github.FetchLicense(ctx, id.Owner, id.Name)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, integrations.ErrNotFound):
		return "", deperrors.Wrap(deperrors.ErrCodeLicenseNotFound, err, "no license detected for %s/%s", id.Owner, id.Name)
	case deperrors.GetCode(err) != "":
		return "", err
	case errors.Is(err, integrations.ErrRateLimited):
		return "", deperrors.Wrap(deperrors.ErrCodeRateLimited, err, "license of %s/%s", id.Owner, id.Name)
	default:
		return "", deperrors.Wrap(deperrors.ErrCodeNetwork, err, "license of %s/%s", id.Owner, id.Name)
	}
}
