package msgauth

import "fmt"

// Release version. Bump on every tagged release.
const (
	Maj    = 0
	Min    = 1
	Fix    = 0
	Suffix = "-dev"
)

// GitCommit is set at build time:
//
//	go build -ldflags "-X github.com/iov-one/msgauth.GitCommit=$(git rev-parse --short HEAD)"
var GitCommit = ""

// Version returns the release version followed by the commit, if known.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)
	if GitCommit != "" {
		v += " " + GitCommit
	}
	return v
}
