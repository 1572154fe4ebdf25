package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ApplyDefaultExcelFormatting applies:
// - bold header (row headerRow),
// - auto-filter on the header row,
// - approximate auto-width for all data columns present on the sheet.
func ApplyDefaultExcelFormatting(f *excelize.File, sheet string, headerRow int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) < headerRow {
		return nil
	}
	cols := len(rows[headerRow-1])
	if cols == 0 {
		return nil
	}
	first := fmt.Sprintf("A%d", headerRow)
	last := fmt.Sprintf("%s%d", columnName(cols), headerRow)

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, first, last, style)
		if headerRow > 1 {
			_ = f.SetCellStyle(sheet, "A1", "A1", style)
		}
	}

	_ = f.AutoFilter(sheet, first+":"+last, nil)

	// ширина по длине содержимого; подпись над таблицей не учитываем
	widths := make([]float64, cols)
	for c := range widths {
		widths[c] = 10
	}
	for rIdx := headerRow - 1; rIdx < len(rows); rIdx++ {
		row := rows[rIdx]
		for cIdx := 0; cIdx < cols && cIdx < len(row); cIdx++ {
			// Cyrillic chars tend to be wider; add a small multiplier.
			w := float64(visualLen(row[cIdx])) * 1.1
			if rIdx == headerRow-1 {
				w += 1.5
			}
			if w > 60 {
				w = 60
			}
			if w > widths[cIdx] {
				widths[cIdx] = w
			}
		}
	}
	for i, w := range widths {
		col := columnName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

// FileName: "<label> <DD.MM.YYYY>.xlsx" без недопустимых символов.
func FileName(label string, at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Выгрузка"
	}
	return sanitizeFileName(fmt.Sprintf("%s %s.xlsx", label, at.In(loc).Format("02.01.2006")))
}

func columnName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

// visualLen approximates text width by counting runes, treating tabs as 4 chars.
func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = invalidFileRe.ReplaceAllString(s, "_")
	return s
}

var invalidSheetRe = regexp.MustCompile(`[\\/:*?\[\]]+`)

// sheetName: имя листа Excel без []:*?/\ и не длиннее 31 символа.
func sheetName(s string) string {
	s = invalidSheetRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Sheet1"
	}
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
