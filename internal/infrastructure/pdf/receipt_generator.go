// Package pdf genera el comprobante de un despacho o recepción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Comprobante de Despacho/Recepción  │  N° + Fecha   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Guía / RUT empresa / Registrado por                 │
//	│  UBICACIÓN: latitud, longitud                               │
//	│  OBSERVACIÓN                                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA FOTOS: N° | Tipo | Fecha de subida                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la referencia del movimiento                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/pkg/rut"
)

var _ movement.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "02/01/2006 15:04"

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa movement.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct {
	appName string
}

// NewReceiptGenerator construye el generador; appName va como autor del documento.
func NewReceiptGenerator(appName string) *ReceiptGenerator {
	return &ReceiptGenerator{appName: appName}
}

// RenderReceipt genera el PDF y devuelve sus bytes. owner puede ser nil.
func (g *ReceiptGenerator) RenderReceipt(_ context.Context, m *entity.Movement, owner *entity.User) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de "+m.Kind.Label(), true).
		WithAuthor(g.appName, true).
		Build()

	doc := maroto.New(cfg)

	doc.AddRows(headerRow(m))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	doc.AddRows(detailRows(m, owner)...)
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	doc.AddRows(photoRows(m.Photos)...)
	doc.AddRows(line.NewRow(3))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	doc.AddRows(footerRow(m))

	out, err := doc.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(m *entity.Movement) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("COMPROBANTE DE "+strings.ToUpper(m.Kind.Label()), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("N° %d", m.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+m.Date.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func detailRows(m *entity.Movement, owner *entity.User) []core.Row {
	field := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
			col.New(8).Add(text.New(value, props.Text{Size: 9, Top: 1})),
		)
	}
	registeredBy := "—"
	if owner != nil {
		registeredBy = nonEmpty(owner.Name, owner.RUT)
	}
	rows := []core.Row{
		field("N° de guía:", m.GuideNumber),
		field("RUT empresa:", formatRUT(m.CompanyRUT)),
		field("Registrado por:", registeredBy),
		field("Ubicación:", location(m)),
	}
	if m.Note != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("Observación:", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
			text.New(m.Note, props.Text{Size: 9, Top: 6, Color: colorGray}),
		)))
	}
	return rows
}

func photoRows(photos []*entity.Photo) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("FOTOS ADJUNTAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	if len(photos) == 0 {
		return append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sin fotos adjuntas.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}))
	}
	rows = append(rows, row.New(6).Add(h("N°", 2), h("Tipo", 4), h("Fecha de subida", 6)))
	for i, p := range photos {
		rows = append(rows, row.New(5).Add(
			col.New(2).Add(text.New(fmt.Sprint(i+1), props.Text{Size: 8})),
			col.New(4).Add(text.New(p.Category, props.Text{Size: 8})),
			col.New(6).Add(text.New(p.UploadedAt.Format(dateLayout), props.Text{Size: 8})),
		))
	}
	return rows
}

// footerRow QR con la referencia tipo:id:guía para cotejar el comprobante con el sistema.
func footerRow(m *entity.Movement) core.Row {
	ref := fmt.Sprintf("%s:%d:%s", m.Kind, m.ID, m.GuideNumber)
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia: "+ref, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Documento generado automáticamente. Conserve este comprobante como respaldo del movimiento.",
				props.Text{Size: 7, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func location(m *entity.Movement) string {
	if !m.Latitude.Valid || !m.Longitude.Valid {
		return "Sin ubicación"
	}
	return m.Latitude.Decimal.StringFixed(6) + ", " + m.Longitude.Decimal.StringFixed(6)
}

func formatRUT(s string) string {
	r, err := rut.Validate(s)
	if err != nil {
		return s
	}
	return r.Formatted()
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
