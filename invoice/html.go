package invoice

import (
	"bytes"
	"html/template"
	"strings"
)

var funcs = template.FuncMap{
	"money":  money,
	"orDash": orDash,
	"join":   strings.Join,
	"date":   func(v View) string { return v.Date.Format("02 Jan 2006") },
}

var htmlTemplate = template.Must(template.New("invoice").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.InvoiceNo}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 13px; color: #222; margin: 24px; }
h1 { text-align: center; margin: 0 0 4px; }
.meta { text-align: center; color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
td.amount, th.amount { text-align: right; }
.part td { color: #555; padding-left: 24px; }
.subtotal td { font-weight: bold; }
.total { font-size: 16px; font-weight: bold; text-align: right; margin-top: 16px; }
</style>
</head>
<body>
<h1>{{.BusinessName}}</h1>
<div class="meta">Invoice {{.InvoiceNo}} &middot; {{date .}}</div>

<p><strong>Customer:</strong> {{.CustomerName}}<br>
<strong>Mobile:</strong> {{.Mobile}}<br>
<strong>Car:</strong> {{.CarNumber}} ({{.CarModel}})</p>

<p><strong>Problems:</strong> {{if .Problems}}{{join .Problems ", "}}{{else}}-{{end}}</p>

<table>
<tr><th>Service</th><th class="amount">Amount (&#8377;)</th></tr>
{{range .Services}}<tr><td>{{.Name}}</td><td class="amount">{{money .Charge}}</td></tr>
{{range .Parts}}<tr class="part"><td>{{.Name}} (Qty {{.Quantity}} &times; &#8377;{{money .PricePerUnit}})</td><td class="amount">{{money .Total}}</td></tr>
{{end}}<tr class="subtotal"><td>Subtotal</td><td class="amount">{{money .Subtotal}}</td></tr>
{{end}}<tr><td>Labor charge</td><td class="amount">{{money .LaborCharge}}</td></tr>
<tr><td>Extra charge</td><td class="amount">{{money .ExtraCharge}}</td></tr>
</table>

<p><strong>Remarks:</strong> {{orDash .Remarks}}</p>
<div class="total">Total: &#8377;{{money .Total}}</div>
</body>
</html>
`))

func RenderHTML(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
