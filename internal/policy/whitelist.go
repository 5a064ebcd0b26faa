// Package policy implements the closed-world mutable-parameter whitelist.
// Absence of an entry denies, never allows, including when the whitelist
// itself is empty.
package policy

import (
	"sort"
	"strings"

	"github.com/rendis/jenkgate/pkg/schema"
)

// Whitelist is the set of parameter names a caller may mutate.
// Membership is exact and case-sensitive.
type Whitelist struct {
	ordered []string
	members map[string]struct{}
}

// NewWhitelist builds a Whitelist from the configured parameter names.
func NewWhitelist(names []string) *Whitelist {
	w := &Whitelist{
		ordered: make([]string, 0, len(names)),
		members: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		if _, dup := w.members[n]; dup {
			continue
		}
		w.members[n] = struct{}{}
		w.ordered = append(w.ordered, n)
	}
	return w
}

// Allows reports whether a single parameter name is permitted.
func (w *Whitelist) Allows(name string) bool {
	_, ok := w.members[name]
	return ok
}

// Check verifies every parameter name against the whitelist. On the first
// disallowed name it returns an AuthorizationError naming the offender and
// listing the permitted set; the caller must reject the entire operation
// before any network call.
func (w *Whitelist) Check(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, n := range sorted {
		if !w.Allows(n) {
			return schema.NewErrorf(schema.ErrCodeAuthorization,
				"parameter %q is not in the allowed parameter whitelist; permitted: %s",
				n, w.Permitted()).
				WithDetails(map[string]any{
					"parameter": n,
					"permitted": w.ordered,
				})
		}
	}
	return nil
}

// Permitted renders the allowed names for error messages, or "(none)" when
// the whitelist is empty.
func (w *Whitelist) Permitted() string {
	if len(w.ordered) == 0 {
		return "(none)"
	}
	return strings.Join(w.ordered, ", ")
}
