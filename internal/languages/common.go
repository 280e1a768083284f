package languages

import (
	"strings"
)

var attributeNames = map[string]bool{
	"UniqueId":          true,
	"UniqueIdAttribute": true,
}

func splitQualifiedName(raw string) (qualifier, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		qualifier = strings.TrimSpace(raw[:idx])
		name = strings.TrimSpace(raw[idx+1:])
		return qualifier, name
	}
	return "", raw
}

// isUniqueIdAttribute reports whether raw names the attribute, bare or
// qualified with ns, with or without the Attribute suffix and global alias.
func isUniqueIdAttribute(raw, ns string) bool {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "global::")
	qualifier, name := splitQualifiedName(raw)
	if !attributeNames[name] {
		return false
	}
	return qualifier == "" || qualifier == ns
}
