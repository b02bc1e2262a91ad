// Package identity derives stable keys for role records so that repeated
// reads of the same posting resolve to the same identity while distinct
// postings do not collide.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"internwatch/internal/model"
)

// Key returns the identity key for a role. It is total and deterministic:
// equivalent records differing only in case or incidental whitespace yield
// the same key. Company, title, the sorted location set and the posting date
// participate; a role reposted with a changed location set counts as new.
func Key(role model.RoleRecord) string {
	locations := make([]string, 0, len(role.Locations))
	for _, location := range role.Locations {
		locations = append(locations, normalize(location))
	}
	sort.Strings(locations)

	parts := []string{
		normalize(role.Company),
		normalize(role.Title),
		strings.Join(locations, ","),
		strconv.FormatInt(role.DatePosted, 10),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
