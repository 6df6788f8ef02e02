package ai

import (
	"regexp"
	"strings"
)

var (
	introPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)here(?: is|'s) an? (?:warm, )?(?:christian |personalized )?(?:anniversary |birthday |celebration )?(?:wish|message) for [^:]+:`),
		regexp.MustCompile(`(?i)^\s*sure[!,.]?\s+`),
	}
	closingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)may god bless you both\.`),
		regexp.MustCompile(`(?i)god bless\.`),
		regexp.MustCompile(`(?i)blessings\.`),
		regexp.MustCompile(`(?i)congratulations again\.`),
	}
	spaceRE = regexp.MustCompile(`\s+`)
)

// CleanMessage strips boilerplate lead-ins and sign-offs that models tend
// to add around the requested text, drops wrapping quotes and collapses
// whitespace to single spaces.
func CleanMessage(s string) string {
	for _, re := range introPatterns {
		s = re.ReplaceAllString(s, "")
	}
	for _, re := range closingPatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
