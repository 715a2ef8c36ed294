package filter

import "regexp"

var customEmojiRegex = regexp.MustCompile(`<a?:\w{2,32}:\d{17,20}>`)

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}

// CountEmojis counts custom emoji tokens plus Unicode emoji code points.
func CountEmojis(content string) int {
	n := len(customEmojiRegex.FindAllStringIndex(content, -1))
	for _, r := range customEmojiRegex.ReplaceAllString(content, "") {
		if isEmojiRune(r) {
			n++
		}
	}
	return n
}
