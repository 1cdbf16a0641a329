// Package model defines the domain types shared across the report pipeline.
package model

import "fmt"

// Package identifies the product tier a customer purchased.
type Package string

const (
	PackageLight    Package = "light"
	PackageStandard Package = "standard"
	PackagePremium  Package = "premium"
)

// Label returns the Korean display label for the tier.
func (p Package) Label() string {
	switch p {
	case PackagePremium:
		return "프리미엄"
	case PackageStandard:
		return "스탠다드"
	default:
		return "라이트"
	}
}

// TotalPages returns the page count of the finished report for the tier.
func (p Package) TotalPages() int {
	switch p {
	case PackagePremium:
		return 44
	case PackageStandard:
		return 25
	default:
		return 20
	}
}

// Customer is the input aggregate for one report run. The pipeline only
// reads it; all saju values arrive precomputed in SajuResult / InyeonResult.
type Customer struct {
	Name        string  `json:"name"`
	BirthYear   int     `json:"birthYear"`
	BirthMonth  int     `json:"birthMonth"`
	BirthDay    int     `json:"birthDay"`
	BirthHour   *int    `json:"birthHour,omitempty"`
	BirthMinute *int    `json:"birthMinute,omitempty"`
	Gender      string  `json:"gender"` // "M"/"남" or "F"/"여"
	Package     Package `json:"package"`

	// SajuResult is the precomputed calculation blob treated as ground
	// truth for verification. InyeonResult is the premium-only pairing
	// blob.
	SajuResult   string `json:"sajuResult"`
	InyeonResult string `json:"inyeonCalcResult,omitempty"`

	Questions      string `json:"questions,omitempty"`
	CustomQuestion string `json:"customQuestion,omitempty"`
	MainConcern    string `json:"mainConcern,omitempty"`
	RepeatPattern  string `json:"repeatPattern,omitempty"`
	LoveStatus     string `json:"loveStatus,omitempty"`
	JobStatus      string `json:"jobStatus,omitempty"`
}

// GenderLabel returns the Korean display label for the customer's gender.
func (c Customer) GenderLabel() string {
	if c.Gender == "M" || c.Gender == "남" {
		return "남성"
	}
	return "여성"
}

// BirthHourLabel formats the birth time, or "모름" when the hour is unknown.
func (c Customer) BirthHourLabel() string {
	if c.BirthHour == nil {
		return "모름시"
	}
	if c.BirthMinute == nil {
		return fmt.Sprintf("%d시", *c.BirthHour)
	}
	return fmt.Sprintf("%d시 %d분", *c.BirthHour, *c.BirthMinute)
}

// Validate checks the fields the pipeline cannot run without.
func (c Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("customer name is required")
	}
	if c.BirthYear == 0 || c.BirthMonth == 0 || c.BirthDay == 0 {
		return fmt.Errorf("customer birth date is required")
	}
	switch c.Package {
	case PackageLight, PackageStandard, PackagePremium:
	default:
		return fmt.Errorf("unknown package %q", c.Package)
	}
	return nil
}
