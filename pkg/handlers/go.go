package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foundryhq/workbay/pkg/config"
	"golang.org/x/mod/modfile"
)

// GoHandler handles Go module ecosystems
type GoHandler struct{}

func (h *GoHandler) GetEcosystem() config.PackageEcosystem {
	return config.EcosystemGo
}

func (h *GoHandler) GetManifestFile() string {
	return "go.mod"
}

func (h *GoHandler) getVersion(path string) string {
	// Go modules do not have a version in the manifest file
	// The version is typically managed with git tags and we can fallback to a `.version` file
	versionFile := filepath.Join(path, ".version")
	if _, err := os.Stat(versionFile); err == nil {
		versionBytes, _ := os.ReadFile(versionFile)
		return strings.TrimSpace(string(versionBytes))
	}
	return "latest"
}

func (h *GoHandler) LoadPackage(path string) (*EcosystemPackage, error) {
	// if path has a go.mod, use that
	// otherwise, add the default manifest to the path
	var manifestPath string
	if filepath.Ext(path) == ".mod" {
		manifestPath = path
	} else {
		manifestPath = filepath.Join(path, h.GetManifestFile())
	}
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest file %s does not exist for ecosystem %s", manifestPath, h.GetEcosystem())
	}

	// read the go.mod file to extract module name
	goMod, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file %s: %w", manifestPath, err)
	}

	// Parse the module name from go.mod (first line: "module <name>")
	lines := strings.Split(string(goMod), "\n")
	var moduleName string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			moduleName = strings.TrimSpace(strings.TrimPrefix(line, "module"))
			break
		}
	}
	if moduleName == "" {
		return nil, fmt.Errorf("could not find module name in go.mod file %s", manifestPath)
	}

	return &EcosystemPackage{
		Name:      moduleName,
		Path:      filepath.Dir(manifestPath),
		Manifest:  manifestPath,
		Ecosystem: h.GetEcosystem(),
		Version:   h.getVersion(filepath.Dir(manifestPath)),
	}, nil
}

func (h *GoHandler) UpdateVersion(path string, version string) error {
	// Go modules do not carry a version in go.mod itself; the resolver
	// persists it to the sidecar .version file written atomically so a
	// crash mid-write never leaves a half-written version behind.
	versionFile := filepath.Join(path, ".version")
	if err := atomicWriteFile(versionFile, []byte(version), 0644); err != nil {
		return fmt.Errorf("failed to write .version file %s: %w", versionFile, err)
	}
	return nil
}

// WriteRequirement rewrites a single `require` directive in go.mod to the
// given version requirement, preserving every other line via modfile's
// formatter rather than a line-oriented rewrite.
func (h *GoHandler) WriteRequirement(path string, depName string, requirement string) error {
	manifestPath := filepath.Join(path, h.GetManifestFile())

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read go.mod %s: %w", manifestPath, err)
	}

	mf, err := modfile.Parse(manifestPath, data, nil)
	if err != nil {
		return fmt.Errorf("failed to parse go.mod %s: %w", manifestPath, err)
	}

	version := strings.TrimPrefix(requirement, "^")
	version = strings.TrimPrefix(version, "~")
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	found := false
	for _, req := range mf.Require {
		if req.Mod.Path == depName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("dependency %s not found in go.mod %s", depName, manifestPath)
	}

	if err := mf.AddRequire(depName, version); err != nil {
		return fmt.Errorf("failed to set requirement for %s: %w", depName, err)
	}
	mf.Cleanup()

	out, err := mf.Format()
	if err != nil {
		return fmt.Errorf("failed to format go.mod %s: %w", manifestPath, err)
	}

	if err := atomicWriteFile(manifestPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write go.mod %s: %w", manifestPath, err)
	}
	return nil
}
