// Package version reports the build version of the lookahead binary.
//
// Version, commit and build time are set at compile time via -ldflags and
// fall back to the module's VCS build settings:
//
//	go build -ldflags "-X github.com/kbukum/lookahead/version.Version=1.0.0"
package version
