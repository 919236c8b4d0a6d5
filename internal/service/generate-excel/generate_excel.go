package generate_excel

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"wip-dashboard/internal/service/dashboard"
	"wip-dashboard/internal/storage"
)

const (
	SheetWIP     = "WIP"
	SheetSummary = "Summary"

	dateLayout = "2006-01-02"
)

var wipHeaders = []string{
	"Project #", "Project", "Customer", "Status", "Estimator", "Labor group",
	"Sales", "Cost", "Margin", "Hours", "Labor sales", "Labor cost", "Created",
}

type WIPSource interface {
	WIPReport(ctx context.Context) (*dashboard.WIPReport, error)
}

type GenerateExcelService struct {
	source WIPSource
}

func NewGenerateService(source WIPSource) *GenerateExcelService {
	return &GenerateExcelService{source: source}
}

func (g *GenerateExcelService) GenerateExcel(ctx context.Context) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	report, err := g.source.WIPReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch report: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWIP); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	if err := writeWIPSheet(f, report.Rows, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := writeSummarySheet(f, report.Summary, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func writeWIPSheet(f *excelize.File, rows []storage.ProjectRecord, headerStyle int) error {
	for i, name := range wipHeaders {
		f.SetCellValue(SheetWIP, cellName(i+1, 1), name)
	}
	if err := f.SetCellStyle(SheetWIP, "A1", cellName(len(wipHeaders), 1), headerStyle); err != nil {
		return err
	}

	for i, p := range rows {
		row := i + 2
		f.SetCellValue(SheetWIP, cellName(1, row), p.ProjectNumber)
		f.SetCellValue(SheetWIP, cellName(2, row), p.ProjectName)
		f.SetCellValue(SheetWIP, cellName(3, row), p.Customer)
		f.SetCellValue(SheetWIP, cellName(4, row), p.Status)
		f.SetCellValue(SheetWIP, cellName(5, row), p.Estimator)
		f.SetCellValue(SheetWIP, cellName(6, row), p.PMCGroup)
		f.SetCellValue(SheetWIP, cellName(7, row), p.Sales)
		f.SetCellValue(SheetWIP, cellName(8, row), p.Cost)
		f.SetCellValue(SheetWIP, cellName(9, row), dashboard.Amount(p.Sales).Sub(dashboard.Amount(p.Cost)).InexactFloat64())
		f.SetCellValue(SheetWIP, cellName(10, row), p.Hours)
		f.SetCellValue(SheetWIP, cellName(11, row), p.LaborSales)
		f.SetCellValue(SheetWIP, cellName(12, row), p.LaborCost)
		if d, ok := dashboard.ProjectDate(p); ok {
			f.SetCellValue(SheetWIP, cellName(13, row), d.Format(dateLayout))
		}
	}

	if err := f.SetPanes(SheetWIP, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	}); err != nil {
		return err
	}

	return f.SetColWidth(SheetWIP, "A", "F", 18)
}

func writeSummarySheet(f *excelize.File, s *storage.DashboardSummary, headerStyle int) error {
	if s == nil {
		s = dashboard.NewSummary()
	}

	row := 1
	put := func(values ...any) {
		for i, v := range values {
			if d, ok := v.(decimal.Decimal); ok {
				v = d.InexactFloat64()
			}
			f.SetCellValue(SheetSummary, cellName(i+1, row), v)
		}
		row++
	}
	header := func(values ...any) error {
		put(values...)
		return f.SetCellStyle(SheetSummary, cellName(1, row-1), cellName(len(values), row-1), headerStyle)
	}

	if err := header("Total", "Sales", "Cost", "Hours"); err != nil {
		return err
	}
	put("All projects", s.TotalSales, s.TotalCost, s.TotalHours)
	row++

	if err := header("Status", "Sales", "Cost", "Hours", "Count"); err != nil {
		return err
	}
	for _, status := range sortedKeys(s.StatusGroups) {
		g := s.StatusGroups[status]
		put(status, g.Sales, g.Cost, g.Hours, g.Count)
	}
	row++

	if err := header("Customer", "Sales", "Cost", "Hours", "Count"); err != nil {
		return err
	}
	for _, customer := range sortedKeys(s.Contractors) {
		c := s.Contractors[customer]
		put(customer, c.Sales, c.Cost, c.Hours, c.Count)
	}
	row++

	if err := header("Labor group", "Bid hours", "PM/bid hours"); err != nil {
		return err
	}
	groups := make(map[string]struct{})
	for k := range s.LaborBreakdown {
		groups[k] = struct{}{}
	}
	for k := range s.PMCGroupHours {
		groups[k] = struct{}{}
	}
	for _, g := range sortedKeys(groups) {
		put(g, s.LaborBreakdown[g], s.PMCGroupHours[g])
	}

	return f.SetColWidth(SheetSummary, "A", "A", 28)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
