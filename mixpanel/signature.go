package mixpanel

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the export API signature: the "key=value" parameters sorted
// as whole strings, concatenated, followed by the api secret, md5 hashed and
// rendered as 32 lowercase hex characters.
func Sign(parameters []string, secret string) string {
	sorted := make([]string, len(parameters))
	copy(sorted, parameters)
	sort.Strings(sorted)

	sum := md5.Sum([]byte(strings.Join(sorted, "") + secret))

	return hex.EncodeToString(sum[:])
}
