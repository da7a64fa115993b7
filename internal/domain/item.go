package domain

import "strings"

// ItemFields are the item attributes a client may set or patch, keyed by the
// name used on the wire. The wire name is also the column name.
var ItemFields = map[string]struct{}{
	"itemname":    {},
	"category":    {},
	"description": {},
}

func IsItemField(name string) bool {
	_, ok := ItemFields[name]
	return ok
}

// NormalizeField trims v and reports whether anything is left.
func NormalizeField(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}
