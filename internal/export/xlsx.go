package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the document as a workbook with three sheets:
// the itemized receipt, per-person balances, and the payment plan.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeItemsSheet(f, doc, headerStyle); err != nil {
		return err
	}
	if err := writeBalancesSheet(f, doc, headerStyle); err != nil {
		return err
	}
	if err := writeSettlementsSheet(f, doc, headerStyle); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeItemsSheet(f *excelize.File, doc Document, headerStyle int) error {
	const sheet = "Receipt"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Item", "Qty", "Unit Price", "Price", "Assigned To"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, item := range doc.Receipt.Items {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.UnitPrice.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Price.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), joinNames(item.AssignedTo))
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Tip")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), doc.Receipt.TipAmount.InexactFloat64())
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), doc.Receipt.Total.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), doc.Receipt.Currency)

	f.SetColWidth(sheet, "A", "A", 32)
	f.SetColWidth(sheet, "E", "E", 28)
	return nil
}

func writeBalancesSheet(f *excelize.File, doc Document, headerStyle int) error {
	const sheet = "Balances"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Person", "Consumed", "Equal Share", "Difference", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, person := range doc.People {
		pb := doc.Analysis.Breakdown[person]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), person)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pb.TotalConsumed.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), pb.EqualShareOwed.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), pb.Difference.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), pb.Status)
		row++
	}

	f.SetColWidth(sheet, "A", "A", 24)
	return nil
}

func writeSettlementsSheet(f *excelize.File, doc Document, headerStyle int) error {
	const sheet = "Settlements"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"From", "To", "Amount", "Currency"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, st := range doc.Analysis.Settlements {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), st.FromPerson)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), st.ToPerson)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), st.Amount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), st.Currency)
		row++
	}

	f.SetColWidth(sheet, "A", "B", 24)
	return nil
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
