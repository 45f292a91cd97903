package deps

import (
	"context"
)

// IdentifierResolver turns a requirement string ("path@version") into the
// canonical [Identifier] of the module it names.
type IdentifierResolver interface {
	Resolve(ctx context.Context, requirement string) (Identifier, error)
}

// ManifestFetcher retrieves the manifest text of one module version.
// Exactly one manifest must exist; a missing or ambiguous manifest is an
// error.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, id Identifier) (string, error)
}

// ManifestParser extracts the ordered list of requirement strings from
// manifest text.
type ManifestParser interface {
	Parse(text string) ([]string, error)
}

// LicenseFetcher looks up the license name of a module. Implementations
// return an error coded LICENSE_NOT_FOUND when upstream has none; the
// builder records [UnknownLicense] in that case.
type LicenseFetcher interface {
	FetchLicense(ctx context.Context, id Identifier) (string, error)
}

// ParserFunc adapts a plain function to [ManifestParser].
type ParserFunc func(text string) ([]string, error)

// Parse calls f(text).
func (f ParserFunc) Parse(text string) ([]string, error) { return f(text) }
