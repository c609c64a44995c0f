// Package version reports the build information of a beankit binary.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/beankit/version.Version=1.0.0"
//
// Anything left unset is taken from the VCS settings the Go toolchain
// embeds. The HTTP server exposes the result at /version.
package version
