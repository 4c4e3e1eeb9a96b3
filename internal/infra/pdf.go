package infra

// pdf.go — thermal receipt-style PDFs via go-pdf/fpdf.
// Two documents are produced:
//   - prefactura: the running tab of an occupied mesa, one section per venta
//   - recibo: the final receipt when the mesa (or a takeaway sale) is closed
// Output files land under storagePath.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mentapos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// A7-ish custom size, close to 74mm thermal paper.
func nuevoTicket() *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 180},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 6)
	pdf.AddPage()
	return pdf
}

// recortarNombre limits a product name to the ticket column width. Cuts on
// runes, not bytes, so accented names never render a broken character.
func recortarNombre(nombre string) string {
	r := []rune(nombre)
	if len(r) <= 22 {
		return nombre
	}
	return string(r[:21]) + "…"
}

func separador(pdf *fpdf.Fpdf) {
	pageW, _ := pdf.GetPageSize()
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)
}

// GenerarPrefacturaPDF renders the running tab of a mesa: header with table
// number and opening time, one block of line items per accumulated venta, and
// the accumulated total. Returns the absolute path of the written file.
func GenerarPrefacturaPDF(nombreRestaurante string, mesa *model.Mesa, pre *model.Prefactura, ventas []model.Venta, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	fileName := fmt.Sprintf("prefactura_mesa%d_%s.pdf", mesa.Numero, time.Now().Format("20060102_150405"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := nuevoTicket()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, nombreRestaurante, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Prefactura (no valida como factura)", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Mesa %d", mesa.Numero), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if mesa.HoraApertura != nil {
		pdf.CellFormat(contentW, 4, "Abierta: "+mesa.HoraApertura.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Impresa: "+time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	separador(pdf)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	for i, v := range ventas {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Pedido %d  (%s)", i+1, v.Fecha.Format("15:04")), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		for _, d := range v.Detalles {
			nombre := ""
			if d.Producto != nil {
				nombre = d.Producto.Nombre
			}
			nombre = recortarNombre(nombre)
			pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 5, "$"+d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(1)
	}

	separador(pdf)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL ACUMULADO:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+pre.TotalAcumulado.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Documento informativo previo al cobro", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write prefactura: %w", err)
	}
	return filePath, nil
}

// GenerarReciboPDF renders the final receipt of a closed sale. totalSesion is
// the amount actually charged (for a mesa close, the accumulated session
// total; for takeaway, the venta total).
func GenerarReciboPDF(nombreRestaurante string, venta *model.Venta, metodoPago string, totalSesion decimal.Decimal, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	fileName := fmt.Sprintf("recibo_%s.pdf", venta.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := nuevoTicket()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, nombreRestaurante, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if venta.MesaNumero != nil {
		pdf.CellFormat(contentW, 4, fmt.Sprintf("Mesa %d", *venta.MesaNumero), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(contentW, 4, string(venta.TipoServicio), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	separador(pdf)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, d := range venta.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		nombre = recortarNombre(nombre)
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	separador(pdf)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+totalSesion.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Pago ("+metodoPago+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+totalSesion.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su visita!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write recibo: %w", err)
	}
	return filePath, nil
}
