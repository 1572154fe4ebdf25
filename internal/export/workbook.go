package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetSpec описывает один лист. Необязательная подпись в первой строке, заголовок и данные.
type SheetSpec struct {
	Title   string
	Caption string
	Header  []string
	Rows    [][]string
}

// Document: готовый файл для отправки в чат.
type Document struct {
	Name string
	Data []byte
}

// Build собирает книгу с одним листом и отдаёт её содержимое.
func Build(s SheetSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheetName(s.Title)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	row := 1
	if s.Caption != "" {
		if err := f.SetCellStr(name, "A1", s.Caption); err != nil {
			return nil, fmt.Errorf("set caption: %w", err)
		}
		row++
	}
	headerRow := row
	if err := setRow(f, name, row, s.Header); err != nil {
		return nil, err
	}
	for _, r := range s.Rows {
		row++
		if err := setRow(f, name, row, r); err != nil {
			return nil, err
		}
	}
	if err := ApplyDefaultExcelFormatting(f, name, headerRow); err != nil {
		return nil, fmt.Errorf("format sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, vals []string) error {
	for c, v := range vals {
		cell := fmt.Sprintf("%s%d", columnName(c+1), row)
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
