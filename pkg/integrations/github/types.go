package github

import "encoding/json"

// contentResponse is a single file entry from the contents API.
type contentResponse struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// licenseResponse is the subset of /repos/{owner}/{repo}/license we use.
type licenseResponse struct {
	License struct {
		Key    string `json:"key"`
		Name   string `json:"name"`
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

// licenseEntry is what gets cached per repository. Found is false when the
// repository exists without a detectable license, so the 404 is cached too.
type licenseEntry struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// rawContents defers decoding until we know whether the API returned a
// single file object or a directory listing.
type rawContents = json.RawMessage
