package invoice

import (
	"fmt"
	"time"

	"greencare-backend/internal/models"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RenderPDF lays the invoice out as an A4 document: issuer block from
// settings, bill-to block from the company, the item table in entry
// order and the total with its amount-in-words line.
func RenderPDF(cfg *models.Settings, inv *models.Invoice, issued time.Time) ([]byte, error) {
	builder := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15)

	m := maroto.New(builder.Build())

	addHeader(m, cfg)
	addMeta(m, inv, issued)
	addItems(m, inv)
	addTotals(m, cfg, inv)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, cfg *models.Settings) {
	m.AddRow(12,
		text.NewCol(8, cfg.CompanyName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
		}),
		text.NewCol(4, "INVOICE", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	issuerLines := []string{cfg.CompanyAddress, cfg.CompanyPhone, cfg.CompanyEmail}
	for _, l := range issuerLines {
		if l == "" {
			continue
		}
		m.AddRow(5, text.NewCol(12, l, props.Text{Size: 9}))
	}

	m.AddRow(4, line.NewCol(12))
}

func addMeta(m core.Maroto, inv *models.Invoice, issued time.Time) {
	m.AddRow(8,
		text.NewCol(6, "Bill To:", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(3, "Invoice No:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, inv.InvoiceNumber, props.Text{Size: 10, Align: align.Right}),
	)

	billTo := []string{inv.Company.Name, inv.Company.ContactPerson, inv.Company.Location, inv.Company.Email}
	first := true
	for _, l := range billTo {
		if l == "" {
			continue
		}
		if first {
			m.AddRow(5,
				text.NewCol(6, l, props.Text{Size: 9}),
				text.NewCol(3, "Date:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
				text.NewCol(3, issued.Format("02 Jan 2006"), props.Text{Size: 10, Align: align.Right}),
			)
			first = false
			continue
		}
		m.AddRow(5, text.NewCol(6, l, props.Text{Size: 9}))
	}

	m.AddRow(6, col.New(12))
}

func addItems(m core.Maroto, inv *models.Invoice) {
	header := props.Text{Size: 10, Style: fontstyle.Bold}
	m.AddRow(8,
		text.NewCol(6, "Description", header),
		text.NewCol(2, "Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, it := range inv.Items {
		m.AddRow(6,
			text.NewCol(6, it.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%g", it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", it.Rate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", it.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
}

func addTotals(m core.Maroto, cfg *models.Settings, inv *models.Invoice) {
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Total:", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, fmt.Sprintf("%s %.2f", cfg.Currency, inv.Amount), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(6, text.NewCol(12, "In Words: "+AmountInWords(inv.Amount), props.Text{
		Size:  9,
		Style: fontstyle.Italic,
	}))

	m.AddRow(10, col.New(12))
	m.AddRow(5, text.NewCol(12, "Thank you for your business.", props.Text{
		Size:  9,
		Align: align.Center,
	}))
}
