package vocab

import "regexp"

// NamePatterns are tried in order against the raw utterance; the first
// capture group of the first match is the user's name.
var NamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is (\w+)`),
	regexp.MustCompile(`(?i)i am (\w+)`),
	regexp.MustCompile(`(?i)call me (\w+)`),
}

// ExtractName looks for a self-introduction in text.
func ExtractName(text string) (string, bool) {
	for _, re := range NamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
