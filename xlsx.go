package exportable

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Built-in Excel number formats.
const (
	xlsxDateFormat     = 14 // m/d/yy
	xlsxDateTimeFormat = 22 // m/d/yy h:mm
)

// XLSXExporter writes an Excel workbook with a single sheet. The first row
// holds the column verbose names. Rows are streamed into the sheet, but the
// workbook is only written to w once every row has been read.
type XLSXExporter struct {
	// Sheet names the worksheet. Default: "Sheet1".
	Sheet string
}

func (XLSXExporter) Extension() string { return "xlsx" }
func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e XLSXExporter) Dump(w io.Writer, t Table, _ Hints) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if e.Sheet != "" && e.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, e.Sheet); err != nil {
			return err
		}
		sheet = e.Sheet
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: xlsxDateFormat})
	if err != nil {
		return err
	}
	dateTimeStyle, err := f.NewStyle(&excelize.Style{NumFmt: xlsxDateTimeFormat})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	cols := t.Columns()
	header := make([]any, len(cols))
	for i, name := range verboseNames(cols) {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	r := 2
	for row, err := range t.Rows() {
		if err != nil {
			return err
		}
		cells := make([]any, len(cols))
		for i, c := range cols {
			cells[i] = xlsxValue(c, row[i], dateStyle, dateTimeStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
		r++
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func xlsxValue(c *Column, v any, dateStyle, dateTimeStyle int) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if c.Type() == Date {
			return excelize.Cell{StyleID: dateStyle, Value: x}
		}
		return excelize.Cell{StyleID: dateTimeStyle, Value: x}
	case string, bool, float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return x
	default:
		return c.ToText(x)
	}
}
