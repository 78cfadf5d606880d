package preprocess

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// emojiRanges covers the emoji blocks stripped from review text before embedding.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F680, 0x1F6FF}, // transport & map symbols
	{0x1F1E0, 0x1F1FF}, // flags
}

// Clean normalizes raw review text for the embedding pipeline: markup tags are
// stripped (text content only), unicode is NFKC-normalized, emoji are removed
// and whitespace runs are collapsed to a single space. Clean is pure and never
// fails; malformed markup is handled as best-effort text extraction.
func Clean(raw string) string {
	text := stripMarkup(raw)
	text = norm.NFKC.String(text)
	text = stripEmoji(text)
	return strings.Join(strings.Fields(text), " ")
}

// stripMarkup extracts the text nodes of an HTML fragment, discarding tags and
// attributes. Plain text passes through unchanged.
func stripMarkup(raw string) string {
	if !strings.ContainsRune(raw, '<') {
		return raw
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF or malformed input; either way we keep what we have.
			return b.String()
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
			b.WriteByte(' ')
		}
	}
}

func stripEmoji(text string) string {
	return strings.Map(func(r rune) rune {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				return -1
			}
		}
		return r
	}, text)
}
