package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of the generated spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// planilha is a single-sheet XLSX export with a bold header row.
type planilha struct {
	sheet  string
	header []string
	rows   [][]interface{}
}

func (p *planilha) add(row ...interface{}) {
	p.rows = append(p.rows, row)
}

func (p *planilha) bytes() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", p.sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(p.header))
	for i, h := range p.header {
		header[i] = h
	}
	if err := f.SetSheetRow(p.sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(p.header), 1)
	if err := f.SetCellStyle(p.sheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range p.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(p.sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
