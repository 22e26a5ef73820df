package schema

import (
	"testing"

	"github.com/complyflow/invoice-readiness/internal/types"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"Total_Excl VAT", "totalexclvat"},
		{"total-excl-vat", "totalexclvat"},
		{"SellerName", "sellername"},
		{"  ", ""},
		{"already", "already"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.expected {
			t.Fatalf("Normalize(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestSchemaShape(t *testing.T) {
	if len(Fields) != 19 {
		t.Fatalf("expected 19 canonical fields, got %d", len(Fields))
	}
	if got := TotalWeight(); got != 37 {
		t.Fatalf("expected total weight 37, got %d", got)
	}
	if got := len(RequiredPaths()); got != 16 {
		t.Fatalf("expected 16 required fields, got %d", got)
	}
}

func TestLookup(t *testing.T) {
	field := Lookup(InvoiceID)
	if field == nil {
		t.Fatalf("Lookup(%q) returned nil", InvoiceID)
	}
	if field.Weight != 3 || !field.Required {
		t.Fatalf("invoice.id expected weight 3 required, got weight %d required %v",
			field.Weight, field.Required)
	}
	if Lookup("invoice.nope") != nil {
		t.Fatalf("Lookup of unknown path expected nil")
	}
}

func TestResolveVariantPriority(t *testing.T) {
	// total_excl_vat is listed before subtotal; it must win when both exist.
	row := types.Row{"subtotal": 90.0, "total_excl_vat": 100.0}
	value, ok := Resolve(row, InvoiceTotalExclVAT)
	if !ok {
		t.Fatalf("Resolve expected a value")
	}
	if value != 100.0 {
		t.Fatalf("expected 100 via total_excl_vat, got %v", value)
	}
}

func TestResolveSynonymsAndSeparators(t *testing.T) {
	row := types.Row{"Seller-TRN": "TRN123"}
	value, ok := Resolve(row, SellerTRN)
	if !ok || value != "TRN123" {
		t.Fatalf("expected TRN123 via separator-insensitive synonym, got %v (ok=%v)", value, ok)
	}
}

func TestResolveNestedShape(t *testing.T) {
	row := types.Row{"seller": map[string]any{"trn": "X1", "name": "Acme"}}
	value, ok := Resolve(row, SellerTRN)
	if !ok || value != "X1" {
		t.Fatalf("expected nested seller.trn X1, got %v (ok=%v)", value, ok)
	}
}

func TestResolveMissing(t *testing.T) {
	row := types.Row{"unrelated": "x"}
	if _, ok := Resolve(row, BuyerTRN); ok {
		t.Fatalf("expected no value for buyer.trn")
	}
}

func TestResolveString(t *testing.T) {
	cases := []struct {
		name     string
		row      types.Row
		path     string
		expected string
		ok       bool
	}{
		{"trims strings", types.Row{"buyer_trn": "  T1  "}, BuyerTRN, "T1", true},
		{"stringifies numbers", types.Row{"buyer_trn": 12345.0}, BuyerTRN, "12345", true},
		{"missing key", types.Row{}, BuyerTRN, "", false},
		{"blank value kept", types.Row{"seller_trn": "   "}, SellerTRN, "", true},
	}
	for _, tc := range cases {
		got, ok := ResolveString(tc.row, tc.path)
		if ok != tc.ok || got != tc.expected {
			t.Fatalf("%s: expected (%q, %v), got (%q, %v)", tc.name, tc.expected, tc.ok, got, ok)
		}
	}
}
