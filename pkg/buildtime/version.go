package buildtime

// set with -ldflags "-X github.com/opst/footprintweb/pkg/buildtime.version=..."
var (
	version  = "dev"
	revision = "unknown"
)

// version string when this footprintweb has been built.
func VERSION() string {
	return version
}

func GIT_REVISION() string {
	return revision
}

func VersionString() string {
	return version + " (commit: " + revision + ")"
}
