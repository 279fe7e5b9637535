package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// SaveSessionReportPDF renders a decode-session health report to PDF, with
// a QR code of the session's content digest on the cover page so a printed
// copy can be matched back to the exact bytes it was produced from.
func SaveSessionReportPDF(rep DecodeSessionReport, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Decode Session Report", false)
	pdf.SetAuthor("bblctl", false)
	pdf.SetCreator("bblctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Decode Session Report")
	addSummarySection(pdf, rep)
	addFrameTypeSection(pdf, rep.ByType)
	if err := addDigestQR(pdf, rep.ContentSHA256); err != nil {
		return err
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, rep DecodeSessionReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Source", value: rep.SourceFile},
		{label: "Sub-log index", value: strconv.Itoa(rep.LogIndex)},
		{label: "Total bytes", value: strconv.FormatInt(rep.TotalBytes, 10)},
		{label: "Corrupt frames", value: strconv.FormatInt(rep.TotalCorruptFrames, 10)},
		{label: "Main stream valid", value: boolLabel(rep.MainStreamValid)},
		{label: "GPS home valid", value: boolLabel(rep.GPSHomeValid)},
		{label: "Content SHA-256", value: rep.ContentSHA256},
	}
	for _, item := range items {
		pdf.CellFormat(45, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFrameTypeSection(pdf *gofpdf.Fpdf, rows []FrameTypeHealth) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Frame Type Health")
	pdf.Ln(9)

	headers := []string{"Type", "Bytes", "Valid", "Corrupt", "Desync"}
	widths := []float64{20, 40, 30, 30, 30}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		values := []string{
			row.Type,
			strconv.FormatInt(row.Bytes, 10),
			strconv.FormatInt(row.ValidCount, 10),
			strconv.FormatInt(row.CorruptCount, 10),
			strconv.FormatInt(row.DesyncCount, 10),
		}
		for i, v := range values {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func addDigestQR(pdf *gofpdf.Fpdf, digest string) error {
	png, err := SessionDigestToQR(digest, 256)
	if err != nil {
		return fmt.Errorf("render digest QR: %w", err)
	}
	reader := bytes.NewReader(png)
	pdf.RegisterImageOptionsReader("digest-qr", gofpdf.ImageOptions{ImageType: "PNG"}, reader)
	pdf.ImageOptions("digest-qr", 150, 20, 40, 40, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

func boolLabel(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
