package receipt

import (
	"bytes"
	"html/template"
	"strings"
)

var receiptHTMLTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"img": imageSrc,
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Receipt-{{.OrderID}}</title>
  <style>
    @page { size: auto; margin: 0; }
    body { margin: 0; padding: 15px; font-family: 'Courier New', Courier, monospace; color: #000; background: #fff; width: 300px; font-size: 12px; }
    h1 { font-size: 18px; font-weight: bold; margin: 5px 0; text-transform: uppercase; letter-spacing: 0.1em; }
    .center { text-align: center; }
    .right { text-align: right; }
    .row { display: flex; justify-content: space-between; }
    .small { font-size: 10px; }
    .order { border-top: 1px solid #000; border-bottom: 1px solid #000; padding: 8px 0; margin: 16px 0; }
    .order .id { font-size: 18px; font-weight: 900; letter-spacing: 0.1em; }
    .dash { border-top: 1px dashed #000; margin: 8px 0; }
    .total { font-weight: bold; font-size: 14px; border-top: 1px solid #000; padding-top: 8px; margin-top: 4px; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 8px; }
    th { border-bottom: 1px solid #000; }
    td, th { padding: 4px 0; vertical-align: top; }
    img.logo { height: 48px; filter: grayscale(100%); }
    img.qr { width: 96px; height: 96px; border: 1px solid #000; padding: 4px; }
    .pre { white-space: pre-wrap; }
  </style>
</head>
<body>
  <div class="center">
    {{with .Logo}}<img class="logo" src="{{img .}}" alt="Logo" />{{end}}
    <h1>{{.ShopName}}</h1>
    <p class="small pre">{{.Address}}</p>
    {{with .Phone}}<p class="small">Tel: {{.}}</p>{{end}}
  </div>
  <div class="center order">
    <div class="small">ORDER TRANSACTION ID</div>
    <div class="id"># {{.OrderID}}</div>
  </div>
  <div class="row"><span>Date:</span><span>{{.Date}}</span></div>
  {{if .HasCustomer}}<div class="small dash">
    {{with .CustomerName}}<div>Cust: {{.}}</div>{{end}}
    {{with .CustomerPhone}}<div>Ph: {{.}}</div>{{end}}
  </div>{{end}}
  <div class="dash"></div>
  <table>
    <thead><tr><th style="text-align:left;">#</th><th style="text-align:left;">Item</th><th>Qty</th><th class="right">Amt</th></tr></thead>
    <tbody>{{range .Lines}}<tr><td class="small">{{.No}}</td><td>{{.Name}}</td><td class="center">{{.Qty}}</td><td class="right">{{.Amount}}</td></tr>{{end}}</tbody>
  </table>
  <div class="dash"></div>
  <div class="row"><span>Subtotal</span><span>{{.SubTotal}}</span></div>
  {{if .TaxEnabled}}<div class="row"><span>Tax Total</span><span>{{.TaxTotal}}</span></div>{{else}}<div class="row"><span>Tax</span><span>{{.TaxTotal}}</span></div>{{end}}
  <div class="row total"><span>TOTAL</span><span>{{.Total}}</span></div>
  <div class="center" style="margin-top: 24px;">
    {{with .PaymentQR}}<p class="small"><b>SCAN TO PAY</b></p><img class="qr" src="{{img .}}" alt="Payment QR" />{{end}}
    <p class="small pre">{{.Footer}}</p>
    <p class="small" style="opacity: 0.5; text-transform: uppercase;">{{.PoweredBy}}</p>
  </div>
</body>
</html>
`))

// HTML renders the printable receipt page.
func HTML(layout Layout) (string, error) {
	var buf bytes.Buffer
	if err := receiptHTMLTmpl.Execute(&buf, layout); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// imageSrc lets embedded image data URLs and http(s) links through the
// template's URL sanitizer. Anything else renders as an empty source.
func imageSrc(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
		return template.URL(src)
	default:
		return ""
	}
}
