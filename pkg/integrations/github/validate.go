package github

import (
	"regexp"

	deperrors "github.com/matzehuels/deptree/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "github owner is required")
	}
	if !validOwner.MatchString(owner) {
		return deperrors.New(deperrors.ErrCodeInvalidInput,
			"invalid github owner "+owner+": must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return deperrors.New(deperrors.ErrCodeInvalidInput, "github repository name is required")
	}
	if !validRepo.MatchString(repo) {
		return deperrors.New(deperrors.ErrCodeInvalidInput,
			"invalid github repository "+repo+": must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
