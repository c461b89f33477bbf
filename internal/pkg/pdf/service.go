// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/cart"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateCartQuote renders the current cart as a printable price quote
func (s *Service) GenerateCartQuote(cartData *cart.CartResponse) (*bytes.Buffer, error) {
	data := quoteData{
		QuoteNumber: fmt.Sprintf("QT-%d", time.Now().UTC().Unix()),
		QuoteDate:   time.Now().Format("January 2, 2006"),
		ValidUntil:  time.Now().AddDate(0, 0, 14).Format("January 2, 2006"),
		Company: companyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
		SubTotal:    formatCents(cartData.Totals.SubTotal),
		Savings:     formatCents(cartData.Totals.Savings),
		HasSavings:  cartData.Totals.Savings > 0,
		TotalAmount: formatCents(cartData.Totals.TotalAmount),
	}

	for _, item := range cartData.Items {
		line := quoteLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: formatCents(item.Price),
			LineTotal: formatCents(item.Price * int64(item.Quantity)),
			Discounts: strings.Join(item.AppliedDiscounts, ", "),
		}
		if item.Product != nil {
			line.SKU = item.Product.SKU
		}
		if item.ProductVariant != nil && item.ProductVariant.SKU != "" {
			line.SKU = item.ProductVariant.SKU
		}
		data.Lines = append(data.Lines, line)
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data quoteData) (string, error) {
	tmpl := template.Must(template.New("quote").Parse(quoteTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// formatCents renders an amount in cents as a dollar string
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// quoteData is the data passed to the quote template
type quoteData struct {
	QuoteNumber string
	QuoteDate   string
	ValidUntil  string
	Company     companyInfo
	Lines       []quoteLine
	SubTotal    string
	Savings     string
	HasSavings  bool
	TotalAmount string
}

type quoteLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice string
	LineTotal string
	Discounts string
}

type companyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// Quote HTML template
const quoteTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Quote {{.QuoteNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .quote-info {
            text-align: right;
            flex: 1;
        }
        .quote-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .discounts {
            color: #166534;
            font-size: 11px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="quote-info">
            <div class="quote-title">PRICE QUOTE</div>
            <p><strong>Quote #:</strong> {{.QuoteNumber}}</p>
            <p><strong>Quote Date:</strong> {{.QuoteDate}}</p>
            <p><strong>Valid Until:</strong> {{.ValidUntil}}</p>
        </div>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Unit Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>
                    <strong>{{.Name}}</strong>
                    {{if .Discounts}}<br><small class="discounts">{{.Discounts}}</small>{{end}}
                </td>
                <td>{{.SKU}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.UnitPrice}}</td>
                <td class="total-col">{{.LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{.SubTotal}}</td>
            </tr>
            {{if .HasSavings}}
            <tr>
                <td class="label">You Save:</td>
                <td class="amount">{{.Savings}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.TotalAmount}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Prices are valid until the date shown above and may change with quantity.</p>
        <p>Questions? Contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
