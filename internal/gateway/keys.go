package gateway

import "strings"

const keySeparator = "/"

// KeyFor returns the storage key of a tenant's file.
// The filename must already be validated.
func KeyFor(id Identity, name Filename) string {
	return PrefixFor(id) + string(name)
}

// PrefixFor returns the namespace prefix owned by a tenant.
func PrefixFor(id Identity) string {
	return string(id) + keySeparator
}

// FilenameFromKey strips prefix from key.
// It reports false when key is outside the prefix or names the prefix itself.
func FilenameFromKey(prefix, key string) (Filename, bool) {
	name, ok := strings.CutPrefix(key, prefix)
	if !ok || name == "" {
		return "", false
	}
	return Filename(name), true
}
