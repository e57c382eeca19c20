// Package version exposes the build's identity: semantic version, git
// commit and branch, build time. Release builds stamp the variables with
// -ldflags; anything unset is recovered from debug.ReadBuildInfo:
//
//	go build -ldflags "-X github.com/skillsenselab/speechkit/version.Version=1.0.0"
package version
