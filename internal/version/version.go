package version

// Version is the current version of the quality tool.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-quality/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// ConfigVersion is the newest configuration file version this build understands.
const ConfigVersion = "1.1.0"

// GetVersion returns the current version of the tool.
func GetVersion() string {
	return Version
}
