// Package version reports build version information for dikit binaries.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags; anything left empty is filled from the build info the Go
// toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/dikit/version.Version=1.0.0"
package version
