package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Document-side patterns read the prose notation of a generated report
// ("木이 3개", pillar sequences, marker names mentioned anywhere).
var (
	docNameRe = regexp.MustCompile(`이름[:\s]*([^\n,]+)`)
	docMetaRe = regexp.MustCompile(`(?s)<!--\s*META.*?-->`)

	pillarToken   = `[` + Stems + `][` + Branches + `]`
	docPillarsRe  = regexp.MustCompile(`(` + pillarToken + `)\s+(` + pillarToken + `)\s+(` + pillarToken + `)\s+(` + pillarToken + `)`)
	docCycleRe    = regexp.MustCompile(`대운[^:：\n]*[:：]?\s*([^\n]+)`)
	docPairScanRe = regexp.MustCompile(pillarToken)

	docFavorableRe = regexp.MustCompile(`용신[:\s]*([^\n,（(]+)`)

	// Per-element alternates in prose order: glyph with counter word,
	// Korean word with counter word, bare glyph with colon.
	docElementRes = map[Element][]*regexp.Regexp{}

	// knownMarkers is the closed set of marker names a report may mention.
	// The document extractor scans for these rather than parsing a block,
	// because reports weave markers into prose.
	knownMarkers = []string{
		"천을귀인", "문창귀인", "천덕귀인", "월덕귀인", "건록", "금여록",
		"역마살", "도화살", "화개살", "양인살", "귀문관살", "백호살",
		"공망", "원진살", "겁살", "재살", "천살", "지살", "년살", "월살",
		"망신살", "장성살", "반안살", "천의성", "학당귀인", "홍염살",
	}
)

func init() {
	for _, e := range Elements {
		docElementRes[e] = []*regexp.Regexp{
			regexp.MustCompile(e.Glyph() + `[이가]?\s*(\d+)\s*개`),
			regexp.MustCompile(string(e) + `[이가]?\s*(\d+)\s*개`),
			regexp.MustCompile(e.Glyph() + `\s*[:：]?\s*(\d+)`),
		}
	}
}

// FromDocument extracts facts from a generated report. Never errors;
// absent fields are left zero.
func FromDocument(text string) Facts {
	f := NewFacts()

	if m := docNameRe.FindStringSubmatch(text); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}
	// A META header takes precedence over prose mentions.
	if meta := docMetaRe.FindString(text); meta != "" {
		if m := docNameRe.FindStringSubmatch(meta); m != nil {
			f.Name = strings.TrimSpace(m[1])
		}
	}

	if m := docPillarsRe.FindStringSubmatch(text); m != nil {
		for i, target := range []*Pillar{&f.Year, &f.Month, &f.Day, &f.Hour} {
			pair := []rune(m[i+1])
			target.Stem = string(pair[0])
			target.Branch = string(pair[1])
		}
	}

	for _, e := range Elements {
		for _, re := range docElementRes[e] {
			if m := re.FindStringSubmatch(text); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					f.Elements[e] = intPtr(n)
				}
				break
			}
		}
	}

	for _, marker := range knownMarkers {
		if strings.Contains(text, marker) {
			f.Markers = append(f.Markers, marker)
		}
	}

	if m := docCycleRe.FindStringSubmatch(text); m != nil {
		f.Cycles = docPairScanRe.FindAllString(m[1], -1)
	}

	if m := docFavorableRe.FindStringSubmatch(text); m != nil {
		f.Favorable = strings.TrimSpace(m[1])
	}

	return f
}
