package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Prompt-side patterns read the labeled notation of the calculation blob
// (e.g. "연주: 乙亥", "木: 3"). Compiled once; applied independently in
// table order, first match wins per field.
var (
	promptNameRe = regexp.MustCompile(`이름[:\s]*([^\n,]+)`)

	promptYearRe  = pillarLabelRe("연주")
	promptMonthRe = pillarLabelRe("월주")
	promptDayRe   = pillarLabelRe("일주")
	promptHourRe  = pillarLabelRe("시주")

	promptCycleStartRe = regexp.MustCompile(`대운\s*시작[:\s]*(\d+)세`)
	promptCycleListRe  = regexp.MustCompile(`대운\s*순서[:\s]*([^\n]+)`)

	promptFavorableRe   = regexp.MustCompile(`용신[:\s]*([^\n,]+)`)
	promptSupportingRe  = regexp.MustCompile(`희신[:\s]*([^\n,]+)`)
	promptAdverseRe     = regexp.MustCompile(`기신[:\s]*([^\n,]+)`)
	promptObstructingRe = regexp.MustCompile(`구신[:\s]*([^\n,]+)`)

	markerLabelRe = regexp.MustCompile(`신살[^:：\n]*[:：][ \t]*([^\n]*)`)

	// Per-element alternates: glyph notation first, Korean word second.
	promptElementRes = buildElementRes(`%s[:\s]*(\d+)`)
)

func pillarLabelRe(label string) *regexp.Regexp {
	return regexp.MustCompile(label + `[:\s]*([` + Stems + `])([` + Branches + `])`)
}

// buildElementRes compiles the glyph and word alternates for each element
// from a printf-style pattern template.
func buildElementRes(template string) map[Element][]*regexp.Regexp {
	out := make(map[Element][]*regexp.Regexp, len(Elements))
	for _, e := range Elements {
		out[e] = []*regexp.Regexp{
			regexp.MustCompile(strings.Replace(template, "%s", e.Glyph(), 1)),
			regexp.MustCompile(strings.Replace(template, "%s", string(e), 1)),
		}
	}
	return out
}

// FromPrompt extracts facts from a calculation blob. Never errors; absent
// fields are left zero.
func FromPrompt(text string) Facts {
	f := NewFacts()

	if m := promptNameRe.FindStringSubmatch(text); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}

	for _, p := range []struct {
		re     *regexp.Regexp
		target *Pillar
	}{
		{promptYearRe, &f.Year},
		{promptMonthRe, &f.Month},
		{promptDayRe, &f.Day},
		{promptHourRe, &f.Hour},
	} {
		if m := p.re.FindStringSubmatch(text); m != nil {
			p.target.Stem = m[1]
			p.target.Branch = m[2]
		}
	}

	for _, e := range Elements {
		for _, re := range promptElementRes[e] {
			if m := re.FindStringSubmatch(text); m != nil {
				n, err := strconv.Atoi(m[1])
				if err == nil {
					f.Elements[e] = intPtr(n)
				}
				break
			}
		}
	}

	f.Markers = markerList(text)

	if m := promptCycleStartRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.CycleStartAge = intPtr(n)
		}
	}
	if m := promptCycleListRe.FindStringSubmatch(text); m != nil {
		f.Cycles = splitList(m[1], ",，→")
	}

	for _, a := range []struct {
		re     *regexp.Regexp
		target *string
	}{
		{promptFavorableRe, &f.Favorable},
		{promptSupportingRe, &f.Supporting},
		{promptAdverseRe, &f.Adverse},
		{promptObstructingRe, &f.Obstructing},
	} {
		if m := a.re.FindStringSubmatch(text); m != nil {
			*a.target = strings.TrimSpace(m[1])
		}
	}

	return f
}

// markerList reads the labeled marker block: the remainder of the label
// line plus following lines up to the next heading, bullet-divider, or
// numbered line. Entries are comma/bullet/newline separated.
func markerList(text string) []string {
	loc := markerLabelRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}

	var block strings.Builder
	block.WriteString(text[loc[2]:loc[3]])

	rest := text[loc[1]:]
scan:
	for _, line := range strings.Split(rest, "\n")[1:] {
		if line != "" {
			switch {
			case line[0] == '#' || line[0] == '-' || line[0] == '*':
				break scan
			case line[0] >= '0' && line[0] <= '9':
				break scan
			}
		}
		block.WriteString("\n")
		block.WriteString(line)
	}
	return splitList(block.String(), ",，\n•·")
}

// splitList splits on any rune of seps, trimming and dropping empties.
func splitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
