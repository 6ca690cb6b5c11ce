package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// SystemScope is the keyspace for caches that are not user-scoped
// (reference catalogs shared by everyone).
const SystemScope = "system"

// UserKey builds a namespaced cache key: u:<user>:<part>:<part>...
func UserKey(userID string, parts ...interface{}) string {
	segs := make([]string, 0, len(parts)+1)
	segs = append(segs, "u:"+userID)
	for _, p := range parts {
		segs = append(segs, fmt.Sprint(p))
	}
	return strings.Join(segs, ":")
}

// QueryHash folds a filter set into a short stable digest so cached list
// entries parameterized by filter arguments get distinct keys.
func QueryHash(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, filters[k])
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:8]
}
