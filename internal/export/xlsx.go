// Package export writes run history to an XLSX workbook for the
// operations team.
package export

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/store"
)

// header is the fixed column layout of the runs sheet.
var header = []string{
	"주문번호", "이름", "패키지", "상태", "메시지",
	"오류", "자동수정", "검수필요",
	"입력 토큰", "출력 토큰", "생성일", "수정일",
}

// Runs exports the runs matching filter to an XLSX file at path.
// Returns the number of data rows written.
func Runs(ctx context.Context, st store.Store, filter store.RunFilter, path string) (int, error) {
	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "export: list runs")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("runs")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().SetString(h)
	}

	for i := range runs {
		addRunRow(sheet, &runs[i])
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", path)
	}
	return len(runs), nil
}

func addRunRow(sheet *xlsx.Sheet, r *model.Run) {
	row := sheet.AddRow()
	row.AddCell().SetString(r.OrderCode)
	row.AddCell().SetString(r.Customer.Name)
	row.AddCell().SetString(r.Customer.Package.Label())
	row.AddCell().SetString(string(r.Status))
	row.AddCell().SetString(r.Message)

	if r.Result != nil {
		v := r.Result.VerifySummary
		row.AddCell().SetString(strconv.Itoa(v.TotalErrors))
		row.AddCell().SetString(strconv.Itoa(v.AutoFixed))
		row.AddCell().SetString(strconv.Itoa(v.NeedsReview))
		row.AddCell().SetString(strconv.FormatInt(r.Result.TotalUsage.InputTokens, 10))
		row.AddCell().SetString(strconv.FormatInt(r.Result.TotalUsage.OutputTokens, 10))
	} else {
		for i := 0; i < 5; i++ {
			row.AddCell().SetString("")
		}
	}

	row.AddCell().SetString(r.CreatedAt.Format("2006-01-02 15:04:05"))
	row.AddCell().SetString(r.UpdatedAt.Format("2006-01-02 15:04:05"))
}
