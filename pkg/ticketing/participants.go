package ticketing

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseUserIDs extracts user IDs from a message asking who to add to a
// ticket. Tokens may be mentions (<@id> or <@!id>) or raw numeric IDs;
// anything else is ignored. Duplicates are collapsed, keeping first
// position.
func ParseUserIDs(content string) []string {
	var ids []string
	seen := make(map[string]struct{})

	for _, token := range strings.Fields(content) {
		id := ""
		if m := mentionPattern.FindStringSubmatch(token); m != nil {
			id = m[1]
		} else if isDigits(token) {
			id = token
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
