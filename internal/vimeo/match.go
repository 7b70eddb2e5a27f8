package vimeo

import "strings"

// MatchesTokens reports whether any non-empty token appears, case
// insensitively, in the video's combined name and description.
//
// This is the only association that exists between catalog videos and local
// batches: there is no foreign key. Substring containment both misses videos
// whose titles were edited and catches unrelated videos that happen to share
// a token, so callers should treat matches as candidates, not certainties.
func MatchesTokens(v Video, tokens []string) bool {
	combined := strings.ToLower(v.Name + " " + v.Description)
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(combined, t) {
			return true
		}
	}
	return false
}
