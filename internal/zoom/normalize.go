package zoom

import "strings"

// NormalizeMeetingID strips the trailing ".0" artifact that numeric meeting
// ids pick up when round-tripped through lossy numeric storage (e.g.
// "85746201234.0" -> "85746201234"). Any other id is returned unchanged;
// empty in, empty out.
func NormalizeMeetingID(id string) string {
	if id == "" {
		return id
	}
	return strings.TrimSuffix(id, ".0")
}
