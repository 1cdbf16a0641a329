// Package verify diffs a generated report against the calculation blob it
// was produced from, and repairs the mismatches that are safe to rewrite.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eunjilab/saju-admin/internal/extract"
	"github.com/eunjilab/saju-admin/internal/model"
)

// MismatchKind classifies one detected inconsistency.
type MismatchKind string

const (
	// KindElementCount: an element count in the report differs from the
	// blob. Auto-fixed by literal rewrite in both notations.
	KindElementCount MismatchKind = "element_count"
	// KindMarkerSurplus: the report mentions a marker the blob does not
	// declare. Flagged only; removing a marker from prose without its
	// surrounding context is unsafe.
	KindMarkerSurplus MismatchKind = "marker_surplus"
	// KindNameMismatch: the report uses a different customer name.
	// Auto-fixed by global replacement.
	KindNameMismatch MismatchKind = "name_mismatch"
)

// Mismatch records one detected inconsistency.
type Mismatch struct {
	Kind     MismatchKind `json:"kind"`
	Field    string       `json:"field,omitempty"`
	Expected string       `json:"expected"`
	Found    string       `json:"found"`
	Message  string       `json:"message"`
}

// Report is the outcome of one verification pass. Never mutated after
// construction.
type Report struct {
	IsValid       bool                `json:"isValid"`
	Errors        []Mismatch          `json:"errors"`
	FixedDocument string              `json:"fixedDocument"`
	Summary       model.VerifySummary `json:"summary"`
}

// Verify extracts facts from both texts, compares them, and rewrites the
// document where a fix is safe. Checks where either side lacks data are
// silently skipped rather than flagged: the extractor is best-effort, so
// absence means "could not compare", not "wrong".
//
// The marker check is one-directional on purpose: markers the report adds
// beyond the blob are flagged, but blob markers missing from the report go
// undetected. This mirrors the behavior the report templates were tuned
// against.
func Verify(sourceText, documentText string) Report {
	truth := extract.FromPrompt(sourceText)
	doc := extract.FromDocument(documentText)

	var errs []Mismatch
	fixed := documentText

	// Element counts: auto-fix both notations via literal rewrite.
	for _, e := range extract.Elements {
		want := truth.Element(e)
		got := doc.Element(e)
		if want == nil || got == nil || *want == *got {
			continue
		}
		errs = append(errs, Mismatch{
			Kind:     KindElementCount,
			Field:    string(e),
			Expected: fmt.Sprintf("%d", *want),
			Found:    fmt.Sprintf("%d", *got),
			Message:  fmt.Sprintf("오행 %s: %d → %d로 수정", e, *got, *want),
		})
		fixed = rewriteElementCount(fixed, e, *got, *want)
	}

	// Marker surplus: flag only, and only when the blob declares markers
	// at all.
	if len(truth.Markers) > 0 {
		truthSet := make(map[string]struct{}, len(truth.Markers))
		for _, m := range truth.Markers {
			truthSet[m] = struct{}{}
		}
		var extra []string
		for _, m := range doc.Markers {
			if _, ok := truthSet[m]; !ok {
				extra = append(extra, m)
			}
		}
		if len(extra) > 0 {
			errs = append(errs, Mismatch{
				Kind:     KindMarkerSurplus,
				Field:    "extra",
				Expected: strings.Join(truth.Markers, ", "),
				Found:    strings.Join(extra, ", "),
				Message:  fmt.Sprintf("계산 결과에 없는 신살 발견: %s", strings.Join(extra, ", ")),
			})
		}
	}

	// Name: auto-fix by global replacement.
	if truth.Name != "" && doc.Name != "" && truth.Name != doc.Name {
		errs = append(errs, Mismatch{
			Kind:     KindNameMismatch,
			Field:    "name",
			Expected: truth.Name,
			Found:    doc.Name,
			Message:  fmt.Sprintf("이름: %s → %s로 수정", doc.Name, truth.Name),
		})
		fixed = strings.ReplaceAll(fixed, doc.Name, truth.Name)
	}

	summary := model.VerifySummary{TotalErrors: len(errs)}
	for _, e := range errs {
		if e.Kind == KindMarkerSurplus {
			summary.NeedsReview++
		} else {
			summary.AutoFixed++
		}
	}

	return Report{
		IsValid:       len(errs) == 0,
		Errors:        errs,
		FixedDocument: fixed,
		Summary:       summary,
	}
}

// rewriteElementCount replaces every "<element> <old>개" occurrence with
// the true count, in glyph and Korean-word notation. A pure literal
// find-and-replace: the count statements are formulaic enough that no
// context is needed.
func rewriteElementCount(text string, e extract.Element, old, want int) string {
	for _, notation := range []string{e.Glyph(), string(e)} {
		re := regexp.MustCompile(fmt.Sprintf(`%s[이가]?\s*%d\s*개`, notation, old))
		text = re.ReplaceAllString(text, fmt.Sprintf("%s이 %d개", notation, want))
	}
	return text
}

// NeedsReview returns the mismatches that require a human to resolve.
func (r Report) NeedsReview() []Mismatch {
	var out []Mismatch
	for _, e := range r.Errors {
		if e.Kind == KindMarkerSurplus {
			out = append(out, e)
		}
	}
	return out
}
