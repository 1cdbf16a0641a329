package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSections(t *testing.T) {
	sections := DefaultSections()
	require.Len(t, sections, 7)

	for i, s := range sections {
		assert.Equal(t, i+1, s.Order)
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Name)
	}

	inyeon, ok := FindSection(sections, "inyeon")
	require.True(t, ok)
	assert.True(t, inyeon.PremiumOnly)
}

func TestRequiredSections(t *testing.T) {
	sections := DefaultSections()

	premium := RequiredSections(sections, PackagePremium)
	assert.Len(t, premium, 7)

	standard := RequiredSections(sections, PackageStandard)
	require.Len(t, standard, 6)
	for _, s := range standard {
		assert.False(t, s.PremiumOnly)
	}

	light := RequiredSections(sections, PackageLight)
	assert.Len(t, light, 6)
}

func TestFindSection(t *testing.T) {
	sections := DefaultSections()

	s, ok := FindSection(sections, "oheng")
	require.True(t, ok)
	assert.Equal(t, "오행+십성", s.Name)

	_, ok = FindSection(sections, "nonexistent")
	assert.False(t, ok)
}

func TestLoadSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	content := `sections:
  - id: intro
    name: 소개
    order: 1
  - id: extra
    name: 추가 분석
    order: 2
    premium_only: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sections, err := LoadSections(path)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "intro", sections[0].ID)
	assert.True(t, sections[1].PremiumOnly)
}

func TestLoadSectionsMissingFile(t *testing.T) {
	_, err := LoadSections(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadSectionsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections: []\n"), 0o644))

	_, err := LoadSections(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sections")
}

func TestLoadSectionsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `sections:
  - name: 아이디 없음
    order: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadSections(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id or order")
}
