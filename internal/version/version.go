package version

// Version contains the application version information.
// Set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/sitepub/internal/version.Version=v1.2.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a single-line version description for --version output.
func String() string {
	s := Version
	if GitCommit != "unknown" {
		s += " (" + GitCommit + ")"
	}
	return s
}
