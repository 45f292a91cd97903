// Package goproxy provides an HTTP client for the Go Module Proxy.
//
// # Overview
//
// This package fetches go.mod files from a Go module proxy
// (https://proxy.golang.org by default) for modules whose source is not
// hosted on GitHub, such as golang.org/x/... modules that resolve to
// go.googlesource.com.
//
// # Usage
//
//	client := goproxy.NewClient(backend, "", 24*time.Hour)
//
//	text, err := client.FetchGoMod(ctx, "golang.org/x/sys", "v0.15.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Caching
//
// go.mod files are immutable per version, so responses are cached under the
// "goproxy:" namespace for the configured TTL.
//
// # Path Escaping
//
// Module paths and versions with uppercase letters are escaped per the Go
// module proxy protocol (uppercase becomes !lowercase).
package goproxy
