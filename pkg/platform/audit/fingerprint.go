package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	id "medgate/pkg/domain"
)

// Fingerprint computes a stable hash over the normalized request attributes.
// It is a correlation handle only, never a dedup or lookup key: two identical
// requests legitimately share a fingerprint.
func Fingerprint(method, resource string, principalID id.PrincipalID, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(strings.ToUpper(strings.TrimSpace(method))))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(resource)))
	h.Write([]byte{0})
	h.Write([]byte(principalID.String()))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(params[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}
