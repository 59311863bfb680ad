package conversation

import "regexp"

// nonWord matches a single character that is neither a letter, a digit,
// nor an underscore. Go's \W is ASCII-only and would classify every CJK
// character as non-word, so the class is spelled out with Unicode
// properties instead.
const nonWord = `[^\p{L}\p{N}_]`

// closingPattern recognizes call-ending utterances at the tail of the
// input: affirmation+thanks+farewell combinations, explicit "no more
// questions" phrasings, bare thanks, goodbye variants, and their English
// equivalents. Matching is case-insensitive and anchored to the end of the
// text so a closing phrase buried mid-question does not end the call.
var closingPattern = regexp.MustCompile(`(?i)(?:^|[\s,，.。;；])(?:` +
	`(?:好的|行|明白了|知道了|没问题|ok)` + nonWord + `*(?:谢谢|感谢|thx|3q)` + nonWord + `*(?:您|你)?` + nonWord + `*(?:再见|拜拜|结束)?[!！。.？?]*$` +
	`|(?:那就这样|那就到这里|没有(?:其他)?问题了?|我(?:的)?问题(?:解决)?了|不需要了?|可以了?|没事了?|就这样吧)[!！。.？?]*$` +
	`|(?:谢谢|感谢|多谢|thx|3q)` + nonWord + `*(?:您|你)?` + nonWord + `*(?:啊|啦|呢)?[!！。.？?]*$` +
	`|(?:再见|拜拜|结束|挂了吧?|停吧?|bye)` + nonWord + `*$` +
	`|(?:thank\s*you|thanks|bye|byebye)` + nonWord + `*$` +
	`)`)

// IsClosing reports whether the utterance signals the end of the call.
// Pure and deterministic; no side effects.
func IsClosing(text string) bool {
	return closingPattern.MatchString(text)
}
