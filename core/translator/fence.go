package translator

import "strings"

const fenceMarker = "```"

// StripFences removes a markdown code fence wrapped around model output.
// The opening token is the marker plus an optional language tag that runs
// to the end of the first line ("```c", "```cpp", "```"). The closing token
// is a bare marker at the very end. Surrounding whitespace is trimmed last.
func StripFences(text string) string {
	if strings.HasPrefix(text, fenceMarker) {
		text = text[len(fenceMarker)+fenceTagLen(text[len(fenceMarker):]):]
	}
	if strings.HasSuffix(text, fenceMarker) {
		text = text[:len(text)-len(fenceMarker)]
	}
	return strings.TrimSpace(text)
}

// fenceTagLen returns the length of the language tag at the start of rest,
// or 0 when the characters after the marker are not a tag on their own line.
func fenceTagLen(rest string) int {
	n := 0
	for n < len(rest) && isTagByte(rest[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	tail := rest[n:]
	if i := strings.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[:i]
	}
	if strings.TrimSpace(tail) != "" {
		// "```int x;```" is code on the fence line, not a tag.
		return 0
	}
	return n
}

func isTagByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '-', c == '_', c == '.', c == '#':
		return true
	}
	return false
}
