// Package manifest is the adapter boundary between the resolver/planner
// and the on-disk manifest of a single package (go.mod, package.json,
// Chart.yaml, ...). It wraps pkg/handlers' ecosystem registry with the
// three operations the rest of the engine needs: read, write_version,
// and write_requirement, each going through an atomic tmp+rename so a
// reader never observes a half-written manifest.
package manifest

import (
	"fmt"

	"github.com/foundryhq/workbay/pkg/config"
	"github.com/foundryhq/workbay/pkg/handlers"
)

// PackageManifest is the read-side view of a package's manifest: its
// declared name, current version, and declared dependency edges.
type PackageManifest struct {
	Name         string
	Path         string
	Ecosystem    config.PackageEcosystem
	ManifestPath string
	Version      string
	Dependencies []config.Dependency
}

// Read loads a package's manifest from disk via its ecosystem handler.
func Read(pkg *config.Package) (*PackageManifest, error) {
	handler, ok := handlers.GetHandler(pkg.Ecosystem)
	if !ok {
		return nil, fmt.Errorf("unsupported ecosystem: %s", pkg.Ecosystem)
	}

	ep, err := handler.LoadPackage(pkg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest for %s: %w", pkg.Name, err)
	}

	return &PackageManifest{
		Name:         ep.Name,
		Path:         ep.Path,
		Ecosystem:    ep.Ecosystem,
		ManifestPath: ep.Manifest,
		Version:      ep.Version,
		Dependencies: pkg.Dependencies,
	}, nil
}

// WriteVersion atomically persists a new version string to the package's
// manifest. One write per package per plan: callers must not call this
// more than once for the same package within a single apply.
func WriteVersion(pkg *config.Package, newVersion string) error {
	if err := handlers.UpdatePackageVersion(pkg, newVersion); err != nil {
		return fmt.Errorf("failed to write version for %s: %w", pkg.Name, err)
	}
	return nil
}

// WriteRequirement atomically rewrites the requirement text of one
// declared dependency inside the package's manifest.
func WriteRequirement(pkg *config.Package, depName, requirement string) error {
	if err := handlers.WritePackageRequirement(pkg, depName, requirement); err != nil {
		return fmt.Errorf("failed to write requirement %s->%s for %s: %w", pkg.Name, depName, pkg.Name, err)
	}
	return nil
}
