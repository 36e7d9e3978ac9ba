package session

import "strings"

// SameIdentity reports whether two visitor ids refer to the same visitor.
// Ids of the form "<base>.<suffix>" match on <base>; the suffix only carries
// the edge location that issued the id.
func SameIdentity(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return identityBase(a) == identityBase(b)
}

func identityBase(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
