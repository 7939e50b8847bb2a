package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const exportSheet = "Reports"

var exportHeader = []string{
	"Branch", "User", "Target", "Achieved", "Percentage", "Status", "Notes", "Submitted At",
}

// BuildWorkbook renders a plan's reports into an xlsx workbook with a bold,
// filterable header row. The caller owns closing the file.
func BuildWorkbook(list []Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(exportSheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	end, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(exportSheet, "A1", end, bold)
	_ = f.AutoFilter(exportSheet, "A1:"+end, nil)

	p := message.NewPrinter(language.English)
	for i, rep := range list {
		submitted := ""
		if rep.SubmittedAt != nil {
			submitted = rep.SubmittedAt.UTC().Format("2006-01-02 15:04")
		}
		row := []string{
			rep.BranchName,
			rep.UserName,
			p.Sprintf("%.2f", rep.PlanTarget),
			p.Sprintf("%.2f", rep.Achieved),
			p.Sprintf("%.1f%%", rep.Percentage),
			string(rep.Status),
			rep.Notes,
			submitted,
		}
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellStr(exportSheet, cell, val); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	for col := range exportHeader {
		width := float64(len(exportHeader[col])) + 6
		if width < 12 {
			width = 12
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		_ = f.SetColWidth(exportSheet, name, name, width)
	}
	return f, nil
}
