package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
)

const (
	sheetPayDay  = "PayDay"
	sheetTimings = "PayDay Timings"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

var countHeaders = []string{
	payroll.LabelFullDay,
	payroll.LabelHalfDay,
	payroll.LabelLeave,
	payroll.LabelHoliday,
	payroll.LabelBlank,
	payroll.LabelLate,
	payroll.LabelOnDuty,
	payroll.LabelWeeklyOff,
	"TOTAL",
}

// FileName is the artifact name of a report, such as "Payroll Report_Acme_10-Mar-2024.xlsx".
func FileName(report *payroll.Report, ext string) string {
	office := strings.ReplaceAll(report.Office, "/", "-")
	return fmt.Sprintf("Payroll Report_%s_%s.%s", office, report.CycleEnd.Format(reportDateLayout), ext)
}

// RenderXLSX implements payroll.Service.
func (s *PayrollServiceImpl) RenderXLSX(report *payroll.Report) (*payroll.Artifact, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetPayDay); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetTimings); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	payDayHeader := []any{"Employee Name", "Employee Code", "Live Since"}
	timingsHeader := []any{"Employee Name"}
	for _, d := range report.Days {
		payDayHeader = append(payDayHeader, d.Header())
		timingsHeader = append(timingsHeader, d.Header())
	}
	payDayHeader = append(payDayHeader, "Total Payable Days", "Employee Details")

	if err := writeRow(f, sheetPayDay, 1, payDayHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := writeRow(f, sheetTimings, 1, timingsHeader, headerStyle); err != nil {
		return nil, err
	}

	for i, row := range report.Rows {
		payDay := []any{row.Name, row.EmployeeCode, row.LiveSince}
		for _, v := range row.PayDay {
			payDay = append(payDay, v)
		}
		payDay = append(payDay, row.TotalPayableDays, row.Details)
		if err := writeRow(f, sheetPayDay, i+2, payDay, 0); err != nil {
			return nil, err
		}

		timings := []any{row.Name}
		for _, v := range row.Timings {
			timings = append(timings, v)
		}
		if err := writeRow(f, sheetTimings, i+2, timings, 0); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{sheetPayDay, sheetTimings} {
		if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			YSplit:      1,
			TopLeftCell: "B2",
			ActivePane:  "bottomRight",
		}); err != nil {
			return nil, fmt.Errorf("failed to freeze panes: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &payroll.Artifact{
		FileName:    FileName(report, payroll.FormatXLSX),
		ContentType: contentTypeXLSX,
		Content:     buf.Bytes(),
	}, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// RenderCSV implements payroll.Service.
func (s *PayrollServiceImpl) RenderCSV(report *payroll.Report) (*payroll.Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Employee Name", "Employee Contact", "Department", "Base Location", "Live Since"}
	for _, d := range report.Days {
		header = append(header, d.Header())
	}
	header = append(header, countHeaders...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{row.Name, row.PhoneNumber, row.Department, row.BaseLocation, row.LiveSince}
		record = append(record, row.Labels...)
		c := row.Counts
		for _, n := range []int{c.FullDay, c.HalfDay, c.Leave, c.Holiday, c.Blank, c.Late, c.OnDuty, c.WeeklyOff} {
			record = append(record, strconv.Itoa(n))
		}
		record = append(record, strconv.FormatFloat(c.Total(), 'f', -1, 64))
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return &payroll.Artifact{
		FileName:    FileName(report, payroll.FormatCSV),
		ContentType: contentTypeCSV,
		Content:     buf.Bytes(),
	}, nil
}
