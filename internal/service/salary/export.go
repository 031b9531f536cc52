package salary

import (
	"context"
	"fmt"

	"github.com/ml-express/courier-backend-go/internal/domain/audit"
	"github.com/ml-express/courier-backend-go/internal/domain/salary"
	"github.com/xuri/excelize/v2"
)

const exportPageSize = 1000

// ExportRecords builds an xlsx workbook of the filtered salary records. The
// export pages through the full result set, never a truncated first page.
func (s *SalaryServiceImpl) ExportRecords(ctx context.Context, filter salary.SalaryFilter) (*excelize.File, error) {
	userID, userName, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter.Limit = exportPageSize
	var records []salary.SalaryRecord
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.salaryRepo.ListRecords(ctx, filter)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
		if len(batch) < exportPageSize || int64(len(records)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	sheet := "Salaries"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{
		"Courier Name", "Period Start", "Period End", "Settlement Period",
		"Deliveries", "Total Km",
		"Base Salary", "Km Fee", "Delivery Bonus", "Performance Bonus",
		"Overtime Pay", "Tips", "Deductions",
		"Gross Salary", "Net Salary",
		"Status", "Payment Method", "Payment Date",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)
	}

	for rowIdx, record := range records {
		paymentMethod := ""
		if record.PaymentMethod != nil {
			paymentMethod = *record.PaymentMethod
		}
		paymentDate := ""
		if record.PaymentDate != nil {
			paymentDate = record.PaymentDate.Format("2006-01-02")
		}

		values := []interface{}{
			record.CourierName,
			record.PeriodStartDate.Format("2006-01-02"),
			record.PeriodEndDate.Format("2006-01-02"),
			string(record.SettlementPeriod),
			record.TotalDeliveries,
			record.TotalKm.InexactFloat64(),
			record.BaseSalary.InexactFloat64(),
			record.KmFee.InexactFloat64(),
			record.DeliveryBonus.InexactFloat64(),
			record.PerformanceBonus.InexactFloat64(),
			record.OvertimePay.InexactFloat64(),
			record.TipAmount.InexactFloat64(),
			record.DeductionAmount.InexactFloat64(),
			record.GrossSalary.InexactFloat64(),
			record.NetSalary.InexactFloat64(),
			string(record.Status),
			paymentMethod,
			paymentDate,
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	s.recordAudit(ctx, audit.Entry{
		UserID:            userID,
		UserName:          userName,
		ActionType:        audit.ActionExport,
		ActionDescription: fmt.Sprintf("Exported %d salary records to Excel", len(records)),
	})

	return f, nil
}
