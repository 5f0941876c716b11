package stub

import "slices"

// Config is the inclusion configuration of a run. It is read-only once the
// run starts.
type Config struct {
	// IgnoredContracts lists qualified names that are never stubbed, whatever
	// their visibility.
	IgnoredContracts []string

	// StubInternal makes internal (unexported) contracts eligible.
	StubInternal bool
}

// Ignored reports whether the qualified name is excluded from stubbing.
func (c Config) Ignored(qualifiedName string) bool {
	return slices.Contains(c.IgnoredContracts, qualifiedName)
}

// Eligible reports whether a declaration may be stubbed, judging by visibility alone.
//
// Public declarations are always eligible, internal ones only when
// cfg.StubInternal is set, anything else never. The IgnoredContracts exclusion
// needs the qualified name and is applied by the Generator after resolution.
func Eligible(decl Declaration, cfg Config) bool {
	switch decl.Visibility() {
	case VisibilityPublic:
		return true
	case VisibilityInternal:
		return cfg.StubInternal
	default:
		return false
	}
}
