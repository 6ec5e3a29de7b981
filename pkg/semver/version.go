// Package semver provides semantic versioning functionality for Workbay.
// It implements parsing, comparison, and manipulation of semantic versions
// according to the Semantic Versioning specification (https://semver.org/),
// including the prerelease and build-metadata extensions the resolver needs
// for prerelease and snapshot flows.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a semantic version with major, minor, patch, an
// optional prerelease identifier, and optional build metadata.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string // e.g. "rc.2"; empty for a release version
	Build      string // e.g. "20230101"; never affects ordering
}

// String returns the version in canonical "major.minor.patch[-pre][+build]" form.
func (v *Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// IsPrerelease reports whether this version carries a prerelease identifier.
func (v *Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Compare compares this version with another version using semver
// precedence. Build metadata is ignored for ordering purposes.
// Returns -1, 0, or 1.
func (v *Version) Compare(other *Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	if v.Patch != other.Patch {
		return cmpInt(v.Patch, other.Patch)
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// comparePrerelease implements semver precedence rule 11: a version with a
// prerelease has lower precedence than the same version without one; two
// prereleases compare their dot-separated identifiers left to right.
func comparePrerelease(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := 0; i < len(aParts) || i < len(bParts); i++ {
		if i >= len(aParts) {
			return -1
		}
		if i >= len(bParts) {
			return 1
		}

		ai, aErr := strconv.Atoi(aParts[i])
		bi, bErr := strconv.Atoi(bParts[i])

		switch {
		case aErr == nil && bErr == nil:
			if ai != bi {
				return cmpInt(ai, bi)
			}
		case aErr == nil:
			return -1 // numeric identifiers always sort lower than alphanumeric
		case bErr == nil:
			return 1
		default:
			if aParts[i] != bParts[i] {
				if aParts[i] < bParts[i] {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}

// Equals returns true if this version equals the other version.
func (v *Version) Equals(other *Version) bool {
	return v.Compare(other) == 0
}

// LessThan returns true if this version is less than the other version.
func (v *Version) LessThan(other *Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan returns true if this version is greater than the other version.
func (v *Version) GreaterThan(other *Version) bool {
	return v.Compare(other) > 0
}

// Copy returns a copy of this version.
func (v *Version) Copy() *Version {
	cp := *v
	return &cp
}

// BumpMajor increments the major version, resets minor/patch to 0, and
// drops any prerelease/build metadata.
func (v *Version) BumpMajor() *Version {
	return &Version{Major: v.Major + 1}
}

// BumpMinor increments the minor version, resets patch to 0, and drops any
// prerelease/build metadata.
func (v *Version) BumpMinor() *Version {
	return &Version{Major: v.Major, Minor: v.Minor + 1}
}

// BumpPatch increments the patch version and drops build metadata. If v is
// itself a prerelease, the patch bump replaces the prerelease rather than
// incrementing the patch number (1.0.0-rc.2 + patch -> 1.0.0).
func (v *Version) BumpPatch() *Version {
	if v.IsPrerelease() {
		return &Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	}
	return &Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// Bump applies a named change type ("major", "minor", "patch") and returns
// the resulting version. Unknown change types return a copy of v unchanged.
func (v *Version) Bump(changeType string) *Version {
	switch strings.ToLower(changeType) {
	case "major":
		return v.BumpMajor()
	case "minor":
		return v.BumpMinor()
	case "patch":
		return v.BumpPatch()
	default:
		return v.Copy()
	}
}

// Parse parses a version string into a Version struct. Accepts an optional
// leading "v", an optional "-prerelease" suffix, and an optional "+build"
// suffix. An empty string or "latest" parses as 0.0.0.
func Parse(versionStr string) (*Version, error) {
	versionStr = strings.TrimSpace(versionStr)
	if versionStr == "" || versionStr == "latest" {
		return &Version{}, nil
	}

	versionStr = strings.TrimPrefix(versionStr, "v")

	var build string
	if idx := strings.Index(versionStr, "+"); idx >= 0 {
		build = versionStr[idx+1:]
		versionStr = versionStr[:idx]
	}

	var prerelease string
	if idx := strings.Index(versionStr, "-"); idx >= 0 {
		prerelease = versionStr[idx+1:]
		versionStr = versionStr[:idx]
	}

	parts := strings.Split(versionStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid version format: %s (expected major.minor.patch)", versionStr)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %s", parts[0])
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minor version: %s", parts[1])
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid patch version: %s", parts[2])
	}

	return &Version{Major: major, Minor: minor, Patch: patch, Prerelease: prerelease, Build: build}, nil
}

// MustParse parses a version string and panics if it's invalid.
func MustParse(versionStr string) *Version {
	version, err := Parse(versionStr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse version %s: %v", versionStr, err))
	}
	return version
}

// New creates a new release Version with the given major, minor, and patch values.
func New(major, minor, patch int) *Version {
	return &Version{Major: major, Minor: minor, Patch: patch}
}

// Zero returns a zero version (0.0.0).
func Zero() *Version {
	return &Version{}
}

// RenderSnapshot renders a snapshot version string from a base version, a
// format template, and the substitution variables available to it: version,
// branch, commit, short_commit, timestamp. The default format is
// "{version}-snapshot.{short_commit}".
func RenderSnapshot(format string, base *Version, branch, commit string, timestamp string) string {
	if format == "" {
		format = "{version}-snapshot.{short_commit}"
	}
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	r := strings.NewReplacer(
		"{version}", base.String(),
		"{branch}", branch,
		"{commit}", commit,
		"{short_commit}", short,
		"{timestamp}", timestamp,
	)
	return r.Replace(format)
}
