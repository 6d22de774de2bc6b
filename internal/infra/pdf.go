package infra

// pdf.go — Receipt PDF generation using go-pdf/fpdf.
// Generates A5-size receipts with:
//   - School header with branch name
//   - Invoice number, date and student details
//   - Fee item table (description, quantity, amount)
//   - Discount line (if applicable)
//   - Bold total and amount paid
//   - Payment method breakdown
//
// The output file is saved to storagePath/receipt_{invoice_number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"schoolpay/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders the receipt for a settled invoice.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateReceiptPDF(invoice *model.Invoice, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", invoice.InvoiceNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24 // total margins = 24mm

	// ── Header ───────────────────────────────────────────────────────────────
	schoolName := "School Administration"
	if invoice.Branch != nil {
		schoolName = invoice.Branch.Name
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, schoolName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Official Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Invoice info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, invoice.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")

	if invoice.Student != nil {
		pdf.Ln(1)
		pdf.CellFormat(contentW, 4,
			fmt.Sprintf("Student: %s %s (ID: %s)",
				invoice.Student.FirstName, invoice.Student.LastName, invoice.Student.StudentID),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.56 // description
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.32 // amount

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount (Birr)", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range invoice.Items {
		desc := item.Description
		if len(desc) > 38 {
			desc = desc[:37] + "…"
		}
		pdf.CellFormat(col1, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, invoice.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if !invoice.DiscountAmount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-"+invoice.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, invoice.FinalAmount.StringFixed(2)+" Birr", "", 1, "R", false, 0, "")

	// ── Payments ──────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 8)
	for _, payment := range invoice.Payments {
		label := fmt.Sprintf("Paid (%s):", payment.Method)
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, payment.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your payment.", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
