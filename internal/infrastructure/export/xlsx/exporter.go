package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ekomarov/drafter/internal/core/domain"
)

const sheetName = "Table of Contents"

// Exporter renders a numbered table of contents into an XLSX workbook,
// one row per entry, indented by level. Style hints from the
// collaborator are applied per level when present.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportXLSX(outline domain.Outline, entries []domain.TOCEntry, styles []domain.StyleHint) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 60)

	if err := f.SetCellValue(sheetName, "A1", outline.Name); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	_ = f.SetCellStyle(sheetName, "A1", "B1", titleStyle)

	levelStyles, err := buildLevelStyles(f, styles)
	if err != nil {
		return nil, err
	}

	for i, entry := range entries {
		row := i + 3
		numberingCell := fmt.Sprintf("A%d", row)
		titleCell := fmt.Sprintf("B%d", row)

		if err := f.SetCellValue(sheetName, numberingCell, entry.Numbering); err != nil {
			return nil, fmt.Errorf("write numbering row %d: %w", row, err)
		}
		indent := strings.Repeat("    ", entry.Level-1)
		if err := f.SetCellValue(sheetName, titleCell, indent+entry.Title); err != nil {
			return nil, fmt.Errorf("write title row %d: %w", row, err)
		}
		if styleID, ok := levelStyles[entry.Level]; ok {
			_ = f.SetCellStyle(sheetName, numberingCell, titleCell, styleID)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func buildLevelStyles(f *excelize.File, styles []domain.StyleHint) (map[int]int, error) {
	out := make(map[int]int, len(styles))
	for _, hint := range styles {
		font := &excelize.Font{Bold: hint.Bold}
		if hint.FontFamily != "" {
			font.Family = hint.FontFamily
		}
		if hint.FontSize > 0 {
			font.Size = float64(hint.FontSize)
		}
		styleID, err := f.NewStyle(&excelize.Style{Font: font})
		if err != nil {
			return nil, fmt.Errorf("create level %d style: %w", hint.Level, err)
		}
		out[hint.Level] = styleID
	}
	return out, nil
}
