package extract

import (
	"regexp"
	"strings"
	"time"
)

// Field names produced by the extraction service.
const (
	FieldSellerName    = "SELLER_NAME"
	FieldBuyerName     = "BUYER_NAME"
	FieldInvoiceNumber = "INVOICE_NUMBER"
	FieldInvoiceDate   = "INVOICE_DATE"
	FieldInvoiceAmount = "INVOICE_AMOUNT"
	FieldUdyamID       = "UDYAM_ID"
	FieldBuyerGSTIN    = "BUYER_GSTIN"
	FieldBuyerEmail    = "BUYER_EMAIL"
)

// Invoice is the normalized creation input built from raw extractor
// output. Amount is the cleaned numeric string ("172515.00") and Date is
// ISO YYYY-MM-DD; either may be empty when the raw text was unusable, in
// which case the user corrects it in the intake form before submission.
type Invoice struct {
	SellerName     string `json:"sellerName"`
	BuyerName      string `json:"buyerName"`
	InvoiceNumber  string `json:"invoiceNumber"`
	InvoiceDate    string `json:"invoiceDate"`
	Amount         string `json:"amount"`
	RegistrationID string `json:"registrationId"`
	BuyerTaxID     string `json:"buyerTaxId"`
	BuyerContact   string `json:"buyerContact"`
}

// Normalize maps raw extractor fields onto the invoice-creation input,
// applying the cleaning rules below.
func Normalize(fields map[string]string) Invoice {
	return Invoice{
		SellerName:     StripLabel(fields[FieldSellerName]),
		BuyerName:      StripLabel(fields[FieldBuyerName]),
		InvoiceNumber:  StripLabel(fields[FieldInvoiceNumber]),
		InvoiceDate:    NormalizeDate(fields[FieldInvoiceDate]),
		Amount:         ParseAmount(fields[FieldInvoiceAmount]),
		RegistrationID: StripLabel(fields[FieldUdyamID]),
		BuyerTaxID:     StripLabel(fields[FieldBuyerGSTIN]),
		BuyerContact:   StripLabel(fields[FieldBuyerEmail]),
	}
}

// StripLabel removes a leading "Label:" prefix the OCR tends to include
// with the value, and trims whitespace.
func StripLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if _, value, found := strings.Cut(s, ":"); found {
		return strings.TrimSpace(value)
	}
	return s
}

var amountToken = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// ParseAmount extracts the leading numeric token from amount text such as
// "Rs. 1,72,515.00" and strips digit-group commas. Returns "" when no
// numeric token is present.
func ParseAmount(raw string) string {
	token := amountToken.FindString(StripLabel(raw))
	if token == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(token, ",", "")
	if cleaned == "" || cleaned == "." {
		return ""
	}
	return cleaned
}

// dateFormats are tried in order; the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// NormalizeDate converts regional date text (DD-MM-YYYY or DD/MM/YYYY) to
// ISO YYYY-MM-DD. Returns "" when the text matches none of the accepted
// formats.
func NormalizeDate(raw string) string {
	s := StripLabel(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
