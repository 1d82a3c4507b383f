package chat

import "regexp"

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// extractMentions collects the usernames referenced as @name tokens,
// deduplicated, in order of first appearance.
func extractMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		mentions = append(mentions, name)
	}
	return mentions
}
