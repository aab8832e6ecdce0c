package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/money"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
)

const documentHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} {{.Doc.InvoiceNumber}}</title>
  <style>
    :root { --accent: {{.Accent}}; }
    * { box-sizing: border-box; }
    body { margin: 0; padding: 40px; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; color: #1a1f36; background: #f7f9fc; }
    .card { background: #fff; max-width: 760px; margin: 0 auto; padding: 56px; border-radius: 4px; }
    .header { display: flex; justify-content: space-between; margin-bottom: 40px; }
    h1 { margin: 0; font-size: 24px; color: var(--accent); }
    .label { font-size: 11px; text-transform: uppercase; color: #8792a2; margin-bottom: 6px; font-weight: 600; }
    .value { font-size: 14px; line-height: 1.5; }
    .meta { display: flex; justify-content: space-between; gap: 24px; margin-bottom: 40px; }
    .meta > div { flex: 1; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
    th { text-align: left; text-transform: uppercase; font-size: 11px; color: #8792a2; border-bottom: 1px solid #e3e8ee; padding: 10px 0; }
    td { padding: 14px 0; border-bottom: 1px solid #e3e8ee; font-size: 14px; vertical-align: top; }
    .right { text-align: right; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .row { display: flex; justify-content: space-between; width: 260px; padding: 6px 0; font-size: 14px; }
    .final { border-top: 1px solid #e3e8ee; margin-top: 10px; padding-top: 10px; font-weight: 700; font-size: 16px; }
    .notes { margin-top: 48px; font-size: 12px; color: #697386; border-top: 1px solid #e3e8ee; padding-top: 20px; white-space: pre-line; }
  </style>
</head>
<body>
  <div class="card">
    <div class="header">
      <div>
        <h1>{{.Title}}</h1>
        <div class="label" style="margin-top: 12px;">Number</div>
        <div class="value">{{.Doc.InvoiceNumber}}</div>
        <div class="label" style="margin-top: 12px;">Status</div>
        <div class="value">{{.Doc.Status}}</div>
      </div>
      <div class="value right">
        <strong>{{.Org.Name}}</strong><br>
        {{range .Org.Address}}{{.}}<br>{{end}}
        {{.Org.Email}}
      </div>
    </div>

    <div class="meta">
      <div>
        <div class="label">Bill to</div>
        <div class="value">
          <strong>{{.Customer.Name}}</strong><br>
          {{range .Customer.Address}}{{.}}<br>{{end}}
          {{.Customer.Email}}
        </div>
      </div>
      {{with .ShipTo}}
      <div>
        <div class="label">Ship to</div>
        <div class="value">
          <strong>{{.Name}}</strong><br>
          {{range .Address}}{{.}}<br>{{end}}
        </div>
      </div>
      {{end}}
      <div>
        <div class="label">Date issued</div>
        <div class="value">{{formatDate .Doc.IssuedAt}}</div>
        <div class="label" style="margin-top: 16px;">Date due</div>
        <div class="value">{{formatDate .Doc.DueAt}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 40%;">Description</th>
          <th class="right">Qty</th>
          <th class="right">Unit price</th>
          <th class="right">Tax</th>
          <th class="right">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Doc.Items}}
        <tr>
          <td>{{.Description}}</td>
          <td class="right">{{.Quantity}}</td>
          <td class="right">{{formatMoney .UnitPrice $.Doc.Currency}}</td>
          <td class="right">{{formatRate .TaxRate}}</td>
          <td class="right">{{formatMoney .LineTotalWithTax $.Doc.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="row"><span>Subtotal</span><span>{{formatMoney .Doc.Subtotal .Doc.Currency}}</span></div>
      <div class="row"><span>Tax</span><span>{{formatMoney .Doc.Tax .Doc.Currency}}</span></div>
      <div class="row final"><span>Total</span><span>{{formatMoney .Doc.Total .Doc.Currency}}</span></div>
    </div>

    {{with .Doc.Notes}}<div class="notes">{{.}}</div>{{end}}
  </div>
</body>
</html>
`

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultAccent = "#111827"

type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"formatMoney": money.Format,
		"formatDate":  formatDate,
		"formatRate":  formatRate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("document").Funcs(funcs).Parse(documentHTMLTemplate)),
	}
}

type htmlView struct {
	Title    string
	Accent   string
	Doc      domain.Document
	Org      Party
	Customer Party
	ShipTo   *Party
}

func (r *HTMLRenderer) RenderHTML(input Input) (string, error) {
	view := htmlView{
		Title:    title(input.Document.Type),
		Accent:   sanitizeColor(input.AccentColor),
		Doc:      input.Document,
		Org:      input.Organization,
		Customer: input.Customer,
		ShipTo:   input.ShipTo,
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func formatRate(rate taxdomain.Rate) string {
	if !rate.IsSet() {
		return "-"
	}
	return rate.String() + "%"
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return defaultAccent
}
