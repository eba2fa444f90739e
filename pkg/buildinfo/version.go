// Package buildinfo holds the version stamped into valuechain binaries.
//
// The variables are set with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/valuechain/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/valuechain/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/valuechain/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/valuechain
//
// Unstamped builds report "dev".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp as reported by the HTTP health check.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
