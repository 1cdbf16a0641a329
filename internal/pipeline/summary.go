package pipeline

import (
	"regexp"
	"strings"
)

// Later sections must stay consistent with earlier ones without resending
// their full text, so a short fact summary is distilled from the
// accumulated document with the same best-effort matching the extractor
// uses.
var summaryFields = []struct {
	label string
	re    *regexp.Regexp
}{
	{"일간", regexp.MustCompile(`일간[^:\n]*:\s*([^\n]+)`)},
	{"강한 오행", regexp.MustCompile(`(?i)강한 오행[^:\n]*:\s*([^\n]+)`)},
	{"격국", regexp.MustCompile(`격국[^:\n]*:\s*([^\n]+)`)},
	{"용신", regexp.MustCompile(`용신[^:\n]*:\s*([^\n]+)`)},
}

// summarizePrevious distills the key terms from prior sections' text.
// Returns "" when nothing was matched.
func summarizePrevious(content string) string {
	if content == "" {
		return ""
	}

	var lines []string
	for _, f := range summaryFields {
		if m := f.re.FindStringSubmatch(content); m != nil {
			lines = append(lines, f.label+": "+strings.TrimSpace(m[1]))
		}
	}
	return strings.Join(lines, "\n")
}
