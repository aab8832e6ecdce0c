package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/invoicer/internal/money"
)

// PDFRenderer lays documents out with maroto. Amounts are printed with the
// ISO code because the built-in PDF fonts lack most currency symbols.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (p *PDFRenderer) RenderPDF(input Input) ([]byte, error) {
	doc := input.Document

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, title(doc.Type), props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, input.Organization.Name, props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Number: "+doc.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+formatDate(doc.IssuedAt), props.Text{Top: 4}),
			text.New("Date due: "+formatDate(doc.DueAt), props.Text{Top: 8}),
			text.New("Status: "+string(doc.Status), props.Text{Top: 12}),
		),
		col.New(6).Add(partyText(input.Organization, false, align.Right)...),
	)

	shipTo := col.New(6)
	if input.ShipTo != nil {
		shipTo = col.New(6).Add(partyText(*input.ShipTo, true, align.Left, "Ship to")...)
	}
	m.AddRow(30,
		col.New(6).Add(partyText(input.Customer, true, align.Left, "Bill to")...),
		shipTo,
	)

	m.AddRow(8,
		text.NewCol(5, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, col.New(12))

	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatWithCode(item.UnitPrice, doc.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatWithCode(item.TaxAmount(), doc.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatWithCode(item.LineTotalWithTax(), doc.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(4, col.New(12))
	totals := []struct {
		label  string
		amount int64
		style  fontstyle.Type
	}{
		{label: "Subtotal", amount: doc.Subtotal, style: fontstyle.Normal},
		{label: "Tax", amount: doc.Tax, style: fontstyle.Normal},
		{label: "Total", amount: doc.Total, style: fontstyle.Bold},
	}
	for _, row := range totals {
		m.AddRow(7,
			col.New(7),
			text.NewCol(2, row.label, props.Text{Size: 9, Style: row.style}),
			text.NewCol(3, money.FormatWithCode(row.amount, doc.Currency), props.Text{Size: 9, Style: row.style, Align: align.Right}),
		)
	}

	if doc.Notes != nil && strings.TrimSpace(*doc.Notes) != "" {
		m.AddRow(20,
			text.NewCol(12, *doc.Notes, props.Text{Size: 8, Top: 6}),
		)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return out.GetBytes(), nil
}

// partyText stacks a name and address block, optionally under a heading.
func partyText(p Party, withEmail bool, a align.Type, heading ...string) []core.Component {
	lines := make([]string, 0, len(p.Address)+3)
	lines = append(lines, heading...)
	lines = append(lines, p.Name)
	lines = append(lines, p.Address...)
	if withEmail && p.Email != "" {
		lines = append(lines, p.Email)
	}

	out := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		style := fontstyle.Normal
		if i == 0 {
			style = fontstyle.Bold
		}
		out = append(out, text.New(l, props.Text{Top: float64(i * 4), Align: a, Style: style}))
	}
	return out
}
