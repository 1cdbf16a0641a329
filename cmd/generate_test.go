package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunjilab/saju-admin/internal/model"
)

func writeOrderFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadOrderFile(t *testing.T) {
	path := writeOrderFile(t, `{
		"orderCode": "ORD-7001",
		"customer": {
			"name": "김철수",
			"birthYear": 1990, "birthMonth": 3, "birthDay": 15,
			"gender": "M", "package": "premium",
			"sajuResult": "목: 2\n화: 3\n"
		},
		"prompt": "이름: 김철수\n목: 2\n"
	}`)

	order, err := readOrderFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ORD-7001", order.OrderCode)
	assert.Equal(t, "김철수", order.Customer.Name)
	assert.Equal(t, model.PackagePremium, order.Customer.Package)
	assert.Equal(t, "목: 2\n화: 3\n", order.Customer.SajuResult)
	assert.Equal(t, "이름: 김철수\n목: 2\n", order.Prompt)
}

func TestReadOrderFileMissingOrderCode(t *testing.T) {
	path := writeOrderFile(t, `{"customer": {"name": "김철수"}}`)

	_, err := readOrderFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orderCode is required")
}

func TestReadOrderFileNotFound(t *testing.T) {
	_, err := readOrderFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read order file")
}
