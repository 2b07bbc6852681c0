// Package meta extracts tag metadata from free-text note fields.
package meta

import "regexp"

var tagPattern = regexp.MustCompile(`<([^<>:]+)(:?)([^>]*)>`)

// Extract scans note for <key> and <key:value> tags. A bare <key> maps to
// true, a <key:value> tag maps to the raw value string. Later tags with the
// same key win. The result is never nil.
func Extract(note string) map[string]any {
	bag := map[string]any{}
	for _, m := range tagPattern.FindAllStringSubmatch(note, -1) {
		if m[2] == ":" {
			bag[m[1]] = m[3]
		} else {
			bag[m[1]] = true
		}
	}
	return bag
}
