package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/stencil/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/stencil/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/stencil/internal/version.Date={{.Date}}
)

// Full returns the version with commit and build date appended when known.
func Full() string {
	s := Version
	if Commit != "unknown" && Commit != "" {
		s = fmt.Sprintf("%s (%s)", s, Commit)
	}
	if Date != "unknown" && Date != "" {
		s = fmt.Sprintf("%s, built %s", s, Date)
	}
	return s
}
