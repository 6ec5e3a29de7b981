package semver

import (
	"fmt"
	"strings"
)

// RequirementKind classifies the operator shape of a Requirement. Rewriting
// a requirement after a bump must preserve this shape (spec §4.E step 4):
// caret stays caret, tilde stays tilde, exact stays exact.
type RequirementKind int

const (
	// KindExact matches a single version exactly ("1.2.3").
	KindExact RequirementKind = iota
	// KindCaret allows changes that do not modify the leftmost non-zero
	// component ("^1.2.3").
	KindCaret
	// KindTilde allows patch-level changes within the same minor ("~1.2.3").
	KindTilde
	// KindRange is an explicit lower/upper bound (">=1.2.0 <2.0.0").
	KindRange
	// KindWildcard matches any version ("*", "x").
	KindWildcard
	// KindWorkspace is a workspace-local alias ("workspace:*", "workspace:^",
	// "workspace:~", "workspace:<exact>").
	KindWorkspace
)

// WorkspaceAliasKind distinguishes the sub-forms of a workspace requirement.
type WorkspaceAliasKind int

const (
	WorkspaceAny WorkspaceAliasKind = iota
	WorkspaceCaret
	WorkspaceTilde
	WorkspaceExact
)

// Requirement is a declarative constraint on an allowed range of Versions.
// It is an immutable value: callers that need a rewritten requirement build
// a new one rather than mutating this.
type Requirement struct {
	Kind RequirementKind
	Text string // the original requirement text, as declared

	// Base is the anchor version for Exact/Caret/Tilde/Workspace kinds.
	Base *Version

	// Low/High bound a KindRange requirement; either may be nil for an
	// open-ended bound.
	Low     *Version
	LowIncl bool
	High    *Version
	HighIncl bool

	// WorkspaceKind applies only when Kind == KindWorkspace.
	WorkspaceKind WorkspaceAliasKind
}

// ParseRequirement parses a requirement string into a Requirement value.
func ParseRequirement(text string) (*Requirement, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, fmt.Errorf("empty requirement")
	}

	if strings.HasPrefix(raw, "workspace:") {
		return parseWorkspaceRequirement(raw)
	}

	if raw == "*" || strings.EqualFold(raw, "x") {
		return &Requirement{Kind: KindWildcard, Text: raw}, nil
	}

	if strings.ContainsAny(raw, " ") || strings.Contains(raw, ">=") || strings.Contains(raw, "<=") ||
		(strings.Contains(raw, ">") && !strings.HasPrefix(raw, "^") && !strings.HasPrefix(raw, "~")) ||
		(strings.Contains(raw, "<") && !strings.HasPrefix(raw, "^") && !strings.HasPrefix(raw, "~")) {
		return parseRangeRequirement(raw)
	}

	switch {
	case strings.HasPrefix(raw, "^"):
		base, err := Parse(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid caret requirement %q: %w", raw, err)
		}
		return &Requirement{Kind: KindCaret, Text: raw, Base: base}, nil
	case strings.HasPrefix(raw, "~"):
		base, err := Parse(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid tilde requirement %q: %w", raw, err)
		}
		return &Requirement{Kind: KindTilde, Text: raw, Base: base}, nil
	default:
		base, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exact requirement %q: %w", raw, err)
		}
		return &Requirement{Kind: KindExact, Text: raw, Base: base}, nil
	}
}

func parseWorkspaceRequirement(raw string) (*Requirement, error) {
	rest := strings.TrimPrefix(raw, "workspace:")
	switch {
	case rest == "*" || rest == "":
		return &Requirement{Kind: KindWorkspace, Text: raw, WorkspaceKind: WorkspaceAny}, nil
	case rest == "^":
		return &Requirement{Kind: KindWorkspace, Text: raw, WorkspaceKind: WorkspaceCaret}, nil
	case rest == "~":
		return &Requirement{Kind: KindWorkspace, Text: raw, WorkspaceKind: WorkspaceTilde}, nil
	default:
		base, err := Parse(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace requirement %q: %w", raw, err)
		}
		return &Requirement{Kind: KindWorkspace, Text: raw, WorkspaceKind: WorkspaceExact, Base: base}, nil
	}
}

// parseRangeRequirement parses a space-separated conjunction of bound
// clauses such as ">=1.2.0 <2.0.0" or a single bound such as ">1.0.0".
func parseRangeRequirement(raw string) (*Requirement, error) {
	req := &Requirement{Kind: KindRange, Text: raw}
	clauses := strings.Fields(raw)
	if len(clauses) == 0 {
		return nil, fmt.Errorf("invalid range requirement %q", raw)
	}

	for _, clause := range clauses {
		var op string
		switch {
		case strings.HasPrefix(clause, ">="):
			op = ">="
		case strings.HasPrefix(clause, "<="):
			op = "<="
		case strings.HasPrefix(clause, ">"):
			op = ">"
		case strings.HasPrefix(clause, "<"):
			op = "<"
		case strings.HasPrefix(clause, "="):
			op = "="
		default:
			return nil, fmt.Errorf("invalid range clause %q in %q", clause, raw)
		}

		v, err := Parse(strings.TrimPrefix(clause, op))
		if err != nil {
			return nil, fmt.Errorf("invalid range bound %q: %w", clause, err)
		}

		switch op {
		case ">=":
			req.Low, req.LowIncl = v, true
		case ">":
			req.Low, req.LowIncl = v, false
		case "<=":
			req.High, req.HighIncl = v, true
		case "<":
			req.High, req.HighIncl = v, false
		case "=":
			req.Low, req.LowIncl = v, true
			req.High, req.HighIncl = v, true
		}
	}
	return req, nil
}

// Satisfies reports whether the given version satisfies this requirement.
// A workspace requirement always matches (the caller is expected to have
// already confirmed this is the named workspace member).
func (r *Requirement) Satisfies(v *Version) bool {
	switch r.Kind {
	case KindWildcard:
		return true
	case KindWorkspace:
		if r.WorkspaceKind == WorkspaceExact {
			return v.Equals(r.Base)
		}
		return true
	case KindExact:
		return v.Equals(r.Base)
	case KindCaret:
		return satisfiesCaret(r.Base, v)
	case KindTilde:
		return satisfiesTilde(r.Base, v)
	case KindRange:
		if r.Low != nil {
			cmp := v.Compare(r.Low)
			if cmp < 0 || (cmp == 0 && !r.LowIncl) {
				return false
			}
		}
		if r.High != nil {
			cmp := v.Compare(r.High)
			if cmp > 0 || (cmp == 0 && !r.HighIncl) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// satisfiesCaret implements "allow changes that do not modify the leftmost
// non-zero component", matching npm/cargo caret semantics.
func satisfiesCaret(base, v *Version) bool {
	if v.LessThan(base) {
		return false
	}
	switch {
	case base.Major != 0:
		return v.Major == base.Major
	case base.Minor != 0:
		return v.Major == 0 && v.Minor == base.Minor
	default:
		return v.Major == 0 && v.Minor == 0 && v.Patch == base.Patch
	}
}

// satisfiesTilde implements "allow patch-level changes within the same minor".
func satisfiesTilde(base, v *Version) bool {
	if v.LessThan(base) {
		return false
	}
	return v.Major == base.Major && v.Minor == base.Minor
}

// Intersects reports whether two requirements could both be satisfied by
// some version. This is necessarily approximate for open-ended textual
// ranges but is exact for the exact/caret/tilde/range/wildcard kinds, which
// is what §3's external version-conflict detection needs.
func (r *Requirement) Intersects(other *Requirement) bool {
	if r.Kind == KindWildcard || other.Kind == KindWildcard {
		return true
	}
	if r.Kind == KindWorkspace || other.Kind == KindWorkspace {
		return true // workspace aliases never conflict; they resolve locally
	}

	rl, rh := r.bounds()
	ol, oh := other.bounds()

	if rh != nil && ol != nil && ol.GreaterThan(rh) {
		return false
	}
	if oh != nil && rl != nil && rl.GreaterThan(oh) {
		return false
	}
	return true
}

// bounds returns the effective inclusive [low, high] version bounds implied
// by a requirement, for intersection testing. nil means unbounded.
func (r *Requirement) bounds() (low, high *Version) {
	switch r.Kind {
	case KindExact:
		return r.Base, r.Base
	case KindCaret:
		return r.Base, caretCeiling(r.Base)
	case KindTilde:
		return r.Base, &Version{Major: r.Base.Major, Minor: r.Base.Minor + 1}
	case KindRange:
		return r.Low, r.High
	default:
		return nil, nil
	}
}

func caretCeiling(base *Version) *Version {
	switch {
	case base.Major != 0:
		return &Version{Major: base.Major + 1}
	case base.Minor != 0:
		return &Version{Major: 0, Minor: base.Minor + 1}
	default:
		return &Version{Major: 0, Minor: 0, Patch: base.Patch + 1}
	}
}

// Rewrite produces a new Requirement targeting newVersion while preserving
// this requirement's operator shape (spec §4.E step 4). Workspace aliases
// are returned unchanged since they are never rewritten.
func (r *Requirement) Rewrite(newVersion *Version) *Requirement {
	switch r.Kind {
	case KindWorkspace, KindWildcard:
		return r
	case KindExact:
		return &Requirement{Kind: KindExact, Base: newVersion, Text: newVersion.String()}
	case KindCaret:
		return &Requirement{Kind: KindCaret, Base: newVersion, Text: "^" + newVersion.String()}
	case KindTilde:
		return &Requirement{Kind: KindTilde, Base: newVersion, Text: "~" + newVersion.String()}
	case KindRange:
		// Preserve the range shape by sliding an inclusive lower bound to
		// the new version while keeping the original upper bound form.
		nr := &Requirement{Kind: KindRange, Low: newVersion, LowIncl: true, High: r.High, HighIncl: r.HighIncl}
		nr.Text = nr.renderRangeText()
		return nr
	default:
		return r
	}
}

func (r *Requirement) renderRangeText() string {
	var parts []string
	if r.Low != nil {
		op := ">"
		if r.LowIncl {
			op = ">="
		}
		parts = append(parts, op+r.Low.String())
	}
	if r.High != nil {
		op := "<"
		if r.HighIncl {
			op = "<="
		}
		parts = append(parts, op+r.High.String())
	}
	return strings.Join(parts, " ")
}

// String returns the requirement's declared text.
func (r *Requirement) String() string {
	return r.Text
}

// IsWorkspaceAlias reports whether this requirement is a workspace:* style alias.
func (r *Requirement) IsWorkspaceAlias() bool {
	return r.Kind == KindWorkspace
}
