package ecosystem

import "github.com/foundryhq/workbay/pkg/semver"

// Handler provides a unified interface for ecosystem version operations.
// GetVersionFiles returns file names relative to the package directory.
type Handler interface {
	ReadVersion() (semver.Version, error)
	UpdateVersion(version semver.Version) error
	GetVersionFiles() []string
}
