package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripLabel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain value", "Arjun Textiles", "Arjun Textiles"},
		{"label prefix", "Seller: Arjun Textiles", "Arjun Textiles"},
		{"invoice number label", "Invoice No: INV-2025-101", "INV-2025-101"},
		{"surrounding whitespace", "  Buyer:  Mega-Retail Corp ", "Mega-Retail Corp"},
		{"empty", "", ""},
		{"only a label", "Amount:", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripLabel(tc.in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"indian digit grouping", "Rs. 1,72,515.00", "172515.00"},
		{"plain number", "500000", "500000"},
		{"decimal without grouping", "500000.50", "500000.50"},
		{"label plus currency", "Total Amount: Rs. 5,00,000", "500000"},
		{"rupee symbol", "₹ 98,500.25", "98500.25"},
		{"no numeric token", "not available", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAmount(tc.in))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already ISO", "2025-02-01", "2025-02-01"},
		{"regional dashes", "01-02-2025", "2025-02-01"},
		{"regional slashes", "01/02/2025", "2025-02-01"},
		{"labeled", "Date: 15-03-2025", "2025-03-15"},
		{"unparseable", "1st Feb 2025", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDate(tc.in))
		})
	}
}

func TestNormalize_FullFieldSet(t *testing.T) {
	// GIVEN: Raw extractor output with typical OCR decoration
	// WHEN: Normalizing
	// THEN: Every field is cleaned and mapped to the creation input

	fields := map[string]string{
		FieldSellerName:    "Seller: Arjun Textiles",
		FieldBuyerName:     "Buyer: Mega-Retail Corp",
		FieldInvoiceNumber: "Invoice No: INV-2025-101",
		FieldInvoiceDate:   "01-02-2025",
		FieldInvoiceAmount: "Rs. 1,72,515.00",
		FieldUdyamID:       "UDYAM-TN-00-0012345",
		FieldBuyerGSTIN:    "GSTIN: 33AAACM1234F1Z5",
		FieldBuyerEmail:    "accounts@megaretail.example",
	}

	got := Normalize(fields)

	assert.Equal(t, "Arjun Textiles", got.SellerName)
	assert.Equal(t, "Mega-Retail Corp", got.BuyerName)
	assert.Equal(t, "INV-2025-101", got.InvoiceNumber)
	assert.Equal(t, "2025-02-01", got.InvoiceDate)
	assert.Equal(t, "172515.00", got.Amount)
	assert.Equal(t, "UDYAM-TN-00-0012345", got.RegistrationID)
	assert.Equal(t, "33AAACM1234F1Z5", got.BuyerTaxID)
	assert.Equal(t, "accounts@megaretail.example", got.BuyerContact)
}

func TestNormalize_MissingFieldsStayEmpty(t *testing.T) {
	// GIVEN: Extractor output where the model found nothing usable
	// THEN: The corresponding inputs are empty, to be corrected in the form

	got := Normalize(map[string]string{
		FieldSellerName:    "Arjun Textiles",
		FieldInvoiceAmount: "illegible",
		FieldInvoiceDate:   "garbage",
	})

	assert.Equal(t, "Arjun Textiles", got.SellerName)
	assert.Empty(t, got.BuyerName)
	assert.Empty(t, got.Amount)
	assert.Empty(t, got.InvoiceDate)
}
