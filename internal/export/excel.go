package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/plan"
)

const sheetName = "KeHoachTuan"

// planColumns is the fixed column order for the import template. Import
// reads columns by position, so the order here is load-bearing. The
// numeric columns hold targets; results are reported later in the app.
var planColumns = []string{
	"Tuần",
	"Ngày",
	"Địa bàn",
	"Nội dung công việc",
	"Người phối hợp",
	"SIM",
	"VAS",
	"Fiber",
	"MyTV",
	"Mesh/Camera",
	"DV CNTT",
	"DT CNTT",
	"DV Khác",
	"Thời gian",
	"Phương thức",
}

// exportColumns is the report layout: paired CT (target) and KQ (result)
// columns per product, then the engagement and evaluation columns.
var exportColumns = []string{
	"STT", "Nhân viên", "Tuần", "Ngày", "Địa bàn", "Nội dung công việc", "Người phối hợp",
	"CT SIM", "KQ SIM",
	"CT VAS", "KQ VAS",
	"CT Fiber", "KQ Fiber",
	"CT MyTV", "KQ MyTV",
	"CT Mesh/Camera", "KQ Mesh/Camera",
	"CT DV CNTT", "KQ DV CNTT",
	"CT DT CNTT", "KQ DT CNTT",
	"CT DV Khác", "KQ DV Khác",
	"Thời gian", "Phương thức",
	"KH tiếp xúc", "HĐ ký", "Trạng thái",
	"Thái độ", "Kỷ luật", "Hiệu quả", "Điểm cộng", "Điểm trừ",
}

// StatusLabel renders a plan status the way the branch reads it.
func StatusLabel(status string) string {
	switch status {
	case plan.StatusPending:
		return "Chờ duyệt"
	case plan.StatusApproved:
		return "Đã duyệt"
	case plan.StatusRejected:
		return "Từ chối"
	case plan.StatusCompleted:
		return "Hoàn thành"
	}
	return status
}

// FileName derives the workbook name from the narrowest filter in play:
// an exact date, then a week label with spaces squeezed out, then today.
func FileName(date, weekNumber string) string {
	switch {
	case date != "":
		return fmt.Sprintf("ke-hoach-%s.xlsx", date)
	case weekNumber != "":
		return fmt.Sprintf("ke-hoach-%s.xlsx", strings.ReplaceAll(weekNumber, " ", ""))
	default:
		return fmt.Sprintf("ke-hoach-%s.xlsx", time.Now().Format("2006-01-02"))
	}
}

// BuildWorkbook renders plans into a spreadsheet with a title block and
// one row per plan.
func BuildWorkbook(plans []plan.Plan, generatedBy string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(exportColumns))
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, err
	}
	f.SetCellValue(sheetName, "A1", "BÁO CÁO KẾ HOẠCH KINH DOANH TUẦN")
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(sheetName, "A2",
		fmt.Sprintf("Xuất ngày %s bởi %s", time.Now().Format("02/01/2006"), generatedBy))

	headerRow := 4
	for i, col := range exportColumns {
		cell, cellErr := excelize.CoordinatesToCellName(i+1, headerRow)
		if cellErr != nil {
			return nil, cellErr
		}
		f.SetCellValue(sheetName, cell, col)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRow)
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), headerRow)
	f.SetCellStyle(sheetName, firstHeader, lastHeader, headerStyle)

	for i, p := range plans {
		row := headerRow + 1 + i
		values := []interface{}{
			i + 1,
			p.EmployeeName,
			p.WeekNumber,
			p.Date,
			p.Area,
			p.WorkContent,
			p.Collaborators,
			p.Targets.Sim, p.Results.Sim,
			p.Targets.Vas, p.Results.Vas,
			p.Targets.Fiber, p.Results.Fiber,
			p.Targets.MyTV, p.Results.MyTV,
			p.Targets.MeshCamera, p.Results.MeshCamera,
			p.Targets.CNTT, p.Results.CNTT,
			p.Targets.RevenueCNTT, p.Results.RevenueCNTT,
			p.Targets.OtherServices, p.Results.OtherServices,
			p.TimeSchedule,
			p.ImplementationMethod,
			p.CustomersContacted,
			p.ContractsSigned,
			StatusLabel(p.Status),
			p.AttitudeScore,
			p.DisciplineScore,
			p.EffectivenessScore,
			p.BonusScore,
			p.PenaltyScore,
		}
		for j, v := range values {
			cell, cellErr := excelize.CoordinatesToCellName(j+1, row)
			if cellErr != nil {
				return nil, cellErr
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	return f, nil
}

// BuildTemplate produces a blank workbook with only the import columns,
// for employees to fill out offline.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, col := range planColumns {
		cell, cellErr := excelize.CoordinatesToCellName(i+1, 1)
		if cellErr != nil {
			return nil, cellErr
		}
		f.SetCellValue(sheetName, cell, col)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, 1)
	lastHeader, _ := excelize.CoordinatesToCellName(len(planColumns), 1)
	f.SetCellStyle(sheetName, firstHeader, lastHeader, headerStyle)

	// Sample row showing the expected formats.
	sample := []interface{}{
		"Tuần 1", time.Now().Format("2006-01-02"), "Xã Yên Thuận", "Bán hàng lưu động", "",
		5, 2, 1, 1, 0, 0, 0, 0, "8h-17h", "Cá nhân",
	}
	for i, v := range sample {
		cell, cellErr := excelize.CoordinatesToCellName(i+1, 2)
		if cellErr != nil {
			return nil, cellErr
		}
		f.SetCellValue(sheetName, cell, v)
	}

	return f, nil
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ParsePlans reads plan rows out of an uploaded workbook. Columns are
// read by position in the template order; the header row is skipped.
// Rows that fail to parse are reported, not fatal.
func ParsePlans(reader io.Reader) ([]plan.CreatePlanDTO, []string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, internal.NewValidationError("file is not a valid spreadsheet", internal.ErrCodeValidationFailed)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, internal.NewValidationError("could not read spreadsheet rows", internal.ErrCodeValidationFailed)
	}

	var dtos []plan.CreatePlanDTO
	var rowErrors []string

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		dto, parseErr := rowToDTO(row)
		if parseErr != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+1, parseErr))
			continue
		}
		dtos = append(dtos, dto)
	}

	return dtos, rowErrors, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func rowToDTO(row []string) (plan.CreatePlanDTO, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	num := func(idx int) (int, error) {
		raw := cell(idx)
		if raw == "" {
			return 0, nil
		}
		return strconv.Atoi(raw)
	}

	dto := plan.CreatePlanDTO{
		WeekNumber:           cell(0),
		Date:                 cell(1),
		Area:                 cell(2),
		WorkContent:          cell(3),
		Collaborators:        cell(4),
		TimeSchedule:         cell(13),
		ImplementationMethod: cell(14),
	}

	var err error
	if dto.Targets.Sim, err = num(5); err != nil {
		return dto, fmt.Errorf("SIM: %w", err)
	}
	if dto.Targets.Vas, err = num(6); err != nil {
		return dto, fmt.Errorf("VAS: %w", err)
	}
	if dto.Targets.Fiber, err = num(7); err != nil {
		return dto, fmt.Errorf("Fiber: %w", err)
	}
	if dto.Targets.MyTV, err = num(8); err != nil {
		return dto, fmt.Errorf("MyTV: %w", err)
	}
	if dto.Targets.MeshCamera, err = num(9); err != nil {
		return dto, fmt.Errorf("Mesh/Camera: %w", err)
	}
	if dto.Targets.CNTT, err = num(10); err != nil {
		return dto, fmt.Errorf("DV CNTT: %w", err)
	}
	revenue, err := num(11)
	if err != nil {
		return dto, fmt.Errorf("DT CNTT: %w", err)
	}
	dto.Targets.RevenueCNTT = int64(revenue)
	if dto.Targets.OtherServices, err = num(12); err != nil {
		return dto, fmt.Errorf("DV Khác: %w", err)
	}

	return dto, nil
}
