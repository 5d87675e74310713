// Package buildinfo carries values stamped by the linker:
//
//	go build -ldflags "-X github.com/m3rciful/postbot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/postbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/postbot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short revision hash.
	Commit = "local"
	// Date is the build time in RFC3339.
	Date = ""
)
