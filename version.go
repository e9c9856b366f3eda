package sitetrans

// Name is the program name used in output and the HTTP user agent.
const Name = "sitetrans"

// Version is the release version.
const Version = "0.3.0"

// Set at build time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/sitetrans.GitCommit=$(git rev-parse HEAD) -X github.com/ZaguanLabs/sitetrans.BuildDate=$(date -u +%FT%TZ)"
var (
	GitCommit = ""
	BuildDate = ""
)

// FullVersion returns Version with the short commit appended when known,
// e.g. "0.3.0+1a2b3c4".
func FullVersion() string {
	if commit := GitCommit; commit != "" && commit != "unknown" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		return Version + "+" + commit
	}
	return Version
}

// UserAgent is sent with provider HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
