package infra

// pdf.go renders the documents printed at the booth with go-pdf/fpdf:
//   - the exit ticket of a closed registration (thermal 74x105mm)
//   - the monthly receipt of a customer (thermal 74x105mm)
//   - the daily cash report of a box list (A4)

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

const businessName = "Garage Mitre"

// newThermal builds a page close to thermal receipt paper.
func newThermal() (*fpdf.Fpdf, float64, float64) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	return pdf, pageW, pageW - 8
}

func header(pdf *fpdf.Fpdf, contentW float64, title string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

func separator(pdf *fpdf.Fpdf, pageW float64) {
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)
}

func row(pdf *fpdf.Fpdf, labelW, valueW, h float64, label, value string) {
	pdf.CellFormat(labelW, h, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, h, value, "", 1, "R", false, 0, "")
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// RegistrationPDF renders the exit ticket of a closed registration.
func RegistrationPDF(reg *model.TicketRegistration) ([]byte, error) {
	if reg.Open() {
		return nil, fmt.Errorf("pdf: registration %s is still open", reg.ID)
	}
	pdf, pageW, contentW := newThermal()
	header(pdf, contentW, "Comprobante de Estadía")

	labelW, valueW := contentW*0.45, contentW*0.55
	pdf.SetFont("Helvetica", "", 8)
	row(pdf, labelW, valueW, 5, "Vehiculo:", reg.VehicleType)
	row(pdf, labelW, valueW, 5, "Entrada:", reg.EntryDay.Format("02/01/2006")+" "+reg.EntryTime)
	row(pdf, labelW, valueW, 5, "Salida:", reg.DepartureDay.Format("02/01/2006")+" "+*reg.DepartureTime)
	if reg.Description != nil && *reg.Description != "" {
		row(pdf, labelW, valueW, 5, "Detalle:", *reg.Description)
	}
	pdf.Ln(1)
	separator(pdf, pageW)

	pdf.SetFont("Helvetica", "B", 10)
	row(pdf, labelW, valueW, 6, "TOTAL:", "$"+reg.Price.StringFixed(2))

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Gracias por su visita", "", 1, "C", false, 0, "")
	return output(pdf)
}

// ReceiptPDF renders a customer's monthly receipt.
func ReceiptPDF(rc *model.Receipt, c *model.Customer) ([]byte, error) {
	pdf, pageW, contentW := newThermal()
	header(pdf, contentW, "Recibo Mensual")

	labelW, valueW := contentW*0.5, contentW*0.5
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Recibo Nro. %d", rc.ReceiptNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if c != nil {
		pdf.CellFormat(contentW, 4, c.LastName+", "+c.FirstName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Emitido: "+rc.DateNow.Format("02/01/2006"), "", 1, "L", false, 0, "")
	if rc.PaymentDate != nil {
		pdf.CellFormat(contentW, 4, "Pagado: "+rc.PaymentDate.Format("02/01/2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	separator(pdf, pageW)

	pdf.SetFont("Helvetica", "", 7)
	if c != nil {
		for _, v := range c.Vehicles {
			row(pdf, labelW, valueW, 4, v.Plate, "$"+v.Amount.StringFixed(2))
		}
	}
	row(pdf, labelW, valueW, 5, "Importe base:", "$"+rc.StartAmount.StringFixed(2))
	if !rc.InterestPercentage.IsZero() {
		row(pdf, labelW, valueW, 5, "Interes ("+rc.InterestPercentage.StringFixed(2)+"%):",
			"$"+rc.Price.Sub(rc.StartAmount).StringFixed(2))
	}
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 9)
	row(pdf, labelW, valueW, 6, "TOTAL:", "$"+rc.Price.StringFixed(2))

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Estado: "+rc.Status, "", 1, "C", false, 0, "")
	return output(pdf)
}

// BoxListPDF renders the daily cash report with every record of the day.
func BoxListPDF(bl *model.BoxList) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, businessName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Caja Nro. %d  -  %s", bl.BoxNumber, bl.Date.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	descW, typeW, amountW := contentW*0.55, contentW*0.2, contentW*0.25
	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(descW, 6, title, "B", 0, "L", false, 0, "")
		pdf.CellFormat(typeW, 6, "", "B", 0, "C", false, 0, "")
		pdf.CellFormat(amountW, 6, "Importe", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
	}
	line := func(desc, kind, amount string) {
		pdf.CellFormat(descW, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(typeW, 5, kind, "", 0, "C", false, 0, "")
		pdf.CellFormat(amountW, 5, amount, "", 1, "R", false, 0, "")
	}

	section("Estadias por hora")
	for _, r := range bl.Registrations {
		if r.Open() {
			continue
		}
		line(r.EntryTime+" - "+*r.DepartureTime, r.VehicleType, "$"+r.Price.StringFixed(2))
	}
	pdf.Ln(3)

	section("Estadias por dia")
	for _, r := range bl.RegistrationsForDay {
		line(r.Description, r.VehicleType, "$"+r.Price.StringFixed(2))
	}
	pdf.Ln(3)

	section("Recibos cobrados")
	for _, r := range bl.Receipts {
		if r.Status != model.ReceiptPaid {
			continue
		}
		line(fmt.Sprintf("Recibo Nro. %d", r.ReceiptNumber), "", "$"+r.Price.StringFixed(2))
	}
	pdf.Ln(3)

	section("Otros movimientos")
	for _, p := range bl.OtherPayments {
		line(p.Description, p.Type, "$"+p.Signed().StringFixed(2))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(descW+typeW, 7, "TOTAL DEL DIA:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(amountW, 7, "$"+bl.TotalPrice.StringFixed(2), "T", 1, "R", false, 0, "")
	return output(pdf)
}

// SavePDF writes data under dir (created if needed) and returns the path.
func SavePDF(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}
