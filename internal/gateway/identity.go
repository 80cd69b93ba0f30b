package gateway

import "strings"

// Claims is the normalized, already trusted claim set of a caller.
type Claims map[string]string

// Identity is the tenant identifier that owns a namespace.
type Identity string

func (i Identity) String() string {
	return string(i)
}

// DefaultClaimFields is the lookup order used when none is configured:
// the stable subject first, then username-like fallbacks.
var DefaultClaimFields = []string{"sub", "cognito:username", "username"}

// IdentityResolver picks the tenant identity out of a claim set.
type IdentityResolver struct {
	fields []string
}

// NewIdentityResolver creates a resolver that tries fields in order.
// With no fields, DefaultClaimFields is used.
func NewIdentityResolver(fields ...string) IdentityResolver {
	if len(fields) == 0 {
		fields = DefaultClaimFields
	}
	return IdentityResolver{fields: fields}
}

// Resolve returns the value of the first claim field that is present and
// non-empty. The value is used verbatim. If that value cannot serve as a key
// segment (path separators, dot segments, surrounding whitespace) the caller
// has no identity: lower-priority fields are never consulted, so one
// principal cannot borrow another's fallback claim.
func (r IdentityResolver) Resolve(claims Claims) (Identity, bool) {
	for _, field := range r.fields {
		v := claims[field]
		if v == "" {
			continue
		}
		if !usableSegment(v) {
			return "", false
		}
		return Identity(v), true
	}
	return "", false
}

func usableSegment(v string) bool {
	switch {
	case v == "." || v == "..":
		return false
	case strings.ContainsAny(v, `/\`):
		return false
	case strings.TrimSpace(v) != v:
		return false
	}
	return true
}
