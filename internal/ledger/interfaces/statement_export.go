package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"fundledger/internal/ledger/application"
)

// BuildStatementPDF renders a member's monthly statement as PDF.
func BuildStatementPDF(stmt *application.Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Member Capital Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Member: %s", stmt.MemberID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %s", stmt.Month.Format("2006-01")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Principal: %s", stmt.TotalPrincipal.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Interest: %s", stmt.TotalInterest.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Withdrawn: %s", stmt.TotalWithdrawn.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Available Balance: %s", stmt.AvailableBalance.String()))
	pdf.Ln(8)

	// Investments table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Investment", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Principal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Rate %", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Interest", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i := range stmt.Investments {
		inv := &stmt.Investments[i]
		pdf.CellFormat(60, 6, inv.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, inv.Principal.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, inv.Rate.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, inv.InterestEarned.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, string(inv.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Withdrawal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Created", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i := range stmt.Withdrawals {
		req := &stmt.Withdrawals[i]
		pdf.CellFormat(45, 6, req.Reference, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, req.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, req.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(req.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders a member's monthly statement as XLSX.
func BuildStatementXLSX(stmt *application.Statement) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	investmentsSheet := "investments"
	activitySheet := "activity"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(investmentsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(activitySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Member Capital Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Member")
	_ = f.SetCellValue(summarySheet, "B3", stmt.MemberID)
	_ = f.SetCellValue(summarySheet, "A4", "Month")
	_ = f.SetCellValue(summarySheet, "B4", stmt.Month.Format("2006-01"))
	_ = f.SetCellValue(summarySheet, "A5", "Total Principal")
	_ = f.SetCellValue(summarySheet, "B5", stmt.TotalPrincipal.String())
	_ = f.SetCellValue(summarySheet, "A6", "Total Interest")
	_ = f.SetCellValue(summarySheet, "B6", stmt.TotalInterest.String())
	_ = f.SetCellValue(summarySheet, "A7", "Total Withdrawn")
	_ = f.SetCellValue(summarySheet, "B7", stmt.TotalWithdrawn.String())
	_ = f.SetCellValue(summarySheet, "A8", "Available Balance")
	_ = f.SetCellValue(summarySheet, "B8", stmt.AvailableBalance.String())

	_ = f.SetCellValue(investmentsSheet, "A1", "Investment")
	_ = f.SetCellValue(investmentsSheet, "B1", "Principal")
	_ = f.SetCellValue(investmentsSheet, "C1", "Rate %")
	_ = f.SetCellValue(investmentsSheet, "D1", "Interest")
	_ = f.SetCellValue(investmentsSheet, "E1", "Status")
	for i := range stmt.Investments {
		inv := &stmt.Investments[i]
		row := i + 2
		_ = f.SetCellValue(investmentsSheet, fmt.Sprintf("A%d", row), inv.ID)
		_ = f.SetCellValue(investmentsSheet, fmt.Sprintf("B%d", row), inv.Principal.String())
		_ = f.SetCellValue(investmentsSheet, fmt.Sprintf("C%d", row), inv.Rate.String())
		_ = f.SetCellValue(investmentsSheet, fmt.Sprintf("D%d", row), inv.InterestEarned.String())
		_ = f.SetCellValue(investmentsSheet, fmt.Sprintf("E%d", row), string(inv.Status))
	}

	_ = f.SetCellValue(activitySheet, "A1", "Type")
	_ = f.SetCellValue(activitySheet, "B1", "Reference")
	_ = f.SetCellValue(activitySheet, "C1", "Created")
	_ = f.SetCellValue(activitySheet, "D1", "Amount")
	_ = f.SetCellValue(activitySheet, "E1", "Status")
	row := 2
	for i := range stmt.Topups {
		req := &stmt.Topups[i]
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("A%d", row), "topup")
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("B%d", row), req.Reference)
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("C%d", row), req.CreatedAt.Format("2006-01-02"))
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("D%d", row), req.Amount.String())
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("E%d", row), string(req.Status))
		row++
	}
	for i := range stmt.Withdrawals {
		req := &stmt.Withdrawals[i]
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("A%d", row), "withdrawal")
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("B%d", row), req.Reference)
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("C%d", row), req.CreatedAt.Format("2006-01-02"))
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("D%d", row), req.Amount.String())
		_ = f.SetCellValue(activitySheet, fmt.Sprintf("E%d", row), string(req.Status))
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
