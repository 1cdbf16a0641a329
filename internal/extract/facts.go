// Package extract pulls comparable structured facts out of loosely
// formatted saju text. Source blobs and generated reports are free-form
// prose with inconsistent notation, so extraction is deliberately
// best-effort: an ordered table of patterns is applied independently,
// first match wins per field, and absent fields stay nil rather than
// erroring. Pipeline correctness only depends on the numeric and
// categorical facts round-tripping, not on full parsing.
package extract

import (
	"fmt"
	"strings"
)

// Element names the five elemental counts, keyed by Korean word.
type Element string

const (
	ElementWood  Element = "목"
	ElementFire  Element = "화"
	ElementEarth Element = "토"
	ElementMetal Element = "금"
	ElementWater Element = "수"
)

// Elements lists the five elements in canonical order.
var Elements = []Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater}

var elementGlyphs = map[Element]string{
	ElementWood:  "木",
	ElementFire:  "火",
	ElementEarth: "土",
	ElementMetal: "金",
	ElementWater: "水",
}

// Glyph returns the hanja notation for the element.
func (e Element) Glyph() string {
	return elementGlyphs[e]
}

// Stem and branch alphabets of the calendrical encoding. Each pillar is
// one stem symbol followed by one branch symbol.
const (
	Stems    = "甲乙丙丁戊己庚辛壬癸"
	Branches = "子丑寅卯辰巳午未申酉戌亥"
)

// Pillar is a two-symbol cycle-pair token.
type Pillar struct {
	Stem   string `json:"stem,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Empty reports whether the pillar was not found.
func (p Pillar) Empty() bool {
	return p.Stem == "" && p.Branch == ""
}

func (p Pillar) String() string {
	return p.Stem + p.Branch
}

// Facts is the comparable field set extracted from one text. Pointer and
// empty values mean "not present in the text"; the verifier skips any
// check where either side is absent.
type Facts struct {
	Name string `json:"name,omitempty"`

	Year  Pillar `json:"year,omitempty"`
	Month Pillar `json:"month,omitempty"`
	Day   Pillar `json:"day,omitempty"`
	Hour  Pillar `json:"hour,omitempty"`

	Elements map[Element]*int `json:"elements"`

	Markers []string `json:"markers,omitempty"`

	CycleStartAge *int     `json:"cycle_start_age,omitempty"`
	Cycles        []string `json:"cycles,omitempty"`

	Favorable   string `json:"favorable,omitempty"`   // 용신
	Supporting  string `json:"supporting,omitempty"`  // 희신
	Adverse     string `json:"adverse,omitempty"`     // 기신
	Obstructing string `json:"obstructing,omitempty"` // 구신
}

// NewFacts returns an empty Facts with the element map initialized.
func NewFacts() Facts {
	return Facts{Elements: make(map[Element]*int, len(Elements))}
}

// Element returns the extracted count for e, or nil when absent.
func (f Facts) Element(e Element) *int {
	if f.Elements == nil {
		return nil
	}
	return f.Elements[e]
}

// HasMarker reports whether the marker name was extracted.
func (f Facts) HasMarker(name string) bool {
	for _, m := range f.Markers {
		if m == name {
			return true
		}
	}
	return false
}

// Canonical renders the facts as labeled lines in the source-blob notation,
// so that FromPrompt(f.Canonical()) reproduces f field for field.
func (f Facts) Canonical() string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	line("이름", f.Name)
	if !f.Year.Empty() {
		line("연주", f.Year.String())
	}
	if !f.Month.Empty() {
		line("월주", f.Month.String())
	}
	if !f.Day.Empty() {
		line("일주", f.Day.String())
	}
	if !f.Hour.Empty() {
		line("시주", f.Hour.String())
	}
	for _, e := range Elements {
		if n := f.Element(e); n != nil {
			fmt.Fprintf(&b, "%s: %d\n", e.Glyph(), *n)
		}
	}
	if f.CycleStartAge != nil {
		fmt.Fprintf(&b, "대운 시작: %d세\n", *f.CycleStartAge)
	}
	if len(f.Cycles) > 0 {
		line("대운 순서", strings.Join(f.Cycles, ", "))
	}
	line("용신", f.Favorable)
	line("희신", f.Supporting)
	line("기신", f.Adverse)
	line("구신", f.Obstructing)
	// Markers go last: the marker block parser consumes following lines
	// until a heading, bullet, or numbered line.
	if len(f.Markers) > 0 {
		line("신살", strings.Join(f.Markers, ", "))
	}
	return b.String()
}

func intPtr(n int) *int { return &n }
