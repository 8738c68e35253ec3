// Where: internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep the binary name and file names in one place.
package meta

const (
	// Project Identity
	AppName   = "refarch"
	EnvPrefix = "REFARCH"

	// Files
	ReleaseConfigFile = "release.yml"
)
