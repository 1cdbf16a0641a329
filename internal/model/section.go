package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SectionSpec is one entry of the fixed report structure table.
type SectionSpec struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Order       int    `yaml:"order" json:"order"`
	PremiumOnly bool   `yaml:"premium_only" json:"premiumOnly"`
}

// DefaultSections returns the built-in seven-section report structure.
func DefaultSections() []SectionSpec {
	return []SectionSpec{
		{ID: "intro", Name: "표지+기본정보", Order: 1},
		{ID: "oheng", Name: "오행+십성", Order: 2},
		{ID: "sinsal", Name: "신살+격국", Order: 3},
		{ID: "yearly", Name: "올해운세", Order: 4},
		{ID: "category", Name: "분야별운세", Order: 5},
		{ID: "inyeon", Name: "인연상", Order: 6, PremiumOnly: true},
		{ID: "ending", Name: "맞춤답변+마무리", Order: 7},
	}
}

// LoadSections reads a section table override from a YAML file. The file
// has a top-level "sections" key.
func LoadSections(path string) ([]SectionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sections: read %s", path)
	}

	var wrapper struct {
		Sections []SectionSpec `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "sections: parse")
	}
	if len(wrapper.Sections) == 0 {
		return nil, eris.New("sections: file defines no sections")
	}
	for _, s := range wrapper.Sections {
		if s.ID == "" || s.Order == 0 {
			return nil, eris.Errorf("sections: entry %q missing id or order", s.Name)
		}
	}
	return wrapper.Sections, nil
}

// RequiredSections filters specs by tier, keeping the table order.
// Premium-only sections are present iff the package is premium.
func RequiredSections(specs []SectionSpec, pkg Package) []SectionSpec {
	out := make([]SectionSpec, 0, len(specs))
	for _, s := range specs {
		if s.PremiumOnly && pkg != PackagePremium {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindSection looks up a section spec by ID.
func FindSection(specs []SectionSpec, id string) (SectionSpec, bool) {
	for _, s := range specs {
		if s.ID == id {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// SectionResult holds one section's generated text plus completion metadata.
type SectionResult struct {
	SectionID   string     `json:"section_id"`
	Content     string     `json:"content"`
	Incomplete  bool       `json:"incomplete,omitempty"`
	RetriesUsed int        `json:"retries_used"`
	Usage       TokenUsage `json:"usage"`
}

// TokenUsage tallies completion-service token consumption for a run.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add accumulates another usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
