// =============================================================================
// Invoice Readiness Analyzer - GETS Canonical Schema
// =============================================================================
//
// This package defines the fixed GETS v0.1 canonical invoice schema that all
// uploaded datasets are matched against. The schema is an immutable data
// table constructed once at process start; changing the supported field set,
// the synonym lists, or the currency allow-list means editing this table,
// not engine logic.
//
// SCHEMA STRUCTURE:
//   19 fields across four groups:
//   - invoice.*  : header-level identifiers, dates, currency, totals
//   - seller.*   : seller identity and tax registration
//   - buyer.*    : buyer identity and tax registration
//   - lines[].*  : line-item fields (nested array or flat-CSV columns)
//
// SYNONYM RESOLUTION:
//   Every field carries a list of known alternate spellings. The same table
//   serves both the field detector (fuzzy matching) and the rule validators
//   (value lookup), so the two subsystems can never drift apart.
//
// =============================================================================

package schema

import (
	"strconv"
	"strings"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// =============================================================================
// FIELD DEFINITION
// =============================================================================

// FieldType is the expected semantic type of a canonical field.
type FieldType string

const (
	// TypeString matches free-form text values.
	TypeString FieldType = "string"

	// TypeNumber matches numeric values.
	TypeNumber FieldType = "number"

	// TypeDate matches calendar dates.
	TypeDate FieldType = "date"

	// TypeEnum matches values from a fixed set (e.g. currency codes).
	// For type-gating purposes an enum behaves like a string.
	TypeEnum FieldType = "enum"
)

// Field is one entry of the canonical schema.
type Field struct {
	// Path is the dotted canonical path, e.g. "invoice.total_excl_vat"
	// or "lines[].qty".
	Path string

	// Type is the expected semantic type of the field.
	Type FieldType

	// Required marks fields that must be present for a dataset to be
	// considered complete. Missing required fields become gaps.
	Required bool

	// Weight is the field's contribution to the coverage score (1-3).
	Weight int

	// Variants lists known alternate spellings of the field name.
	// Comparison is case- and separator-insensitive (see Normalize).
	Variants []string
}

// =============================================================================
// CANONICAL FIELD PATHS
// =============================================================================

const (
	InvoiceID           = "invoice.id"
	InvoiceIssueDate    = "invoice.issue_date"
	InvoiceCurrency     = "invoice.currency"
	InvoiceTotalExclVAT = "invoice.total_excl_vat"
	InvoiceVATAmount    = "invoice.vat_amount"
	InvoiceTotalInclVAT = "invoice.total_incl_vat"
	SellerName          = "seller.name"
	SellerTRN           = "seller.trn"
	SellerCountry       = "seller.country"
	SellerCity          = "seller.city"
	BuyerName           = "buyer.name"
	BuyerTRN            = "buyer.trn"
	BuyerCountry        = "buyer.country"
	BuyerCity           = "buyer.city"
	LineSKU             = "lines[].sku"
	LineDescription     = "lines[].description"
	LineQty             = "lines[].qty"
	LineUnitPrice       = "lines[].unit_price"
	LineTotal           = "lines[].line_total"
)

// =============================================================================
// SCHEMA TABLE
// =============================================================================

// Fields is the GETS v0.1 schema in canonical order. The order is load
// bearing: the detector classifies fields in this order and the coverage
// partition preserves it.
var Fields = []Field{
	{Path: InvoiceID, Type: TypeString, Required: true, Weight: 3,
		Variants: []string{"inv_id", "invoice_id", "inv_no", "invoice_no", "invoice_number", "id"}},
	{Path: InvoiceIssueDate, Type: TypeDate, Required: true, Weight: 3,
		Variants: []string{"date", "issuedate", "issue_date", "issued_on", "issuedon", "invoice_date", "invoicedate", "created_date", "createddate"}},
	{Path: InvoiceCurrency, Type: TypeEnum, Required: true, Weight: 3,
		Variants: []string{"currency", "curr", "currency_code"}},
	{Path: InvoiceTotalExclVAT, Type: TypeNumber, Required: true, Weight: 3,
		Variants: []string{"total_excl_vat", "total_net", "totalNet", "net_total", "subtotal", "totalnet"}},
	{Path: InvoiceVATAmount, Type: TypeNumber, Required: true, Weight: 3,
		Variants: []string{"vat_amount", "vat", "tax_amount", "tax"}},
	{Path: InvoiceTotalInclVAT, Type: TypeNumber, Required: true, Weight: 3,
		Variants: []string{"total_incl_vat", "grand_total", "grandTotal", "total", "grandtotal"}},
	{Path: SellerName, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"seller_name", "sellername", "sellerName", "vendor_name", "supplier_name"}},
	{Path: SellerTRN, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"seller_trn", "seller_tax_id", "sellertax", "sellerTax", "vendor_trn", "supplier_trn"}},
	{Path: SellerCountry, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"seller_country", "vendor_country", "supplier_country"}},
	{Path: SellerCity, Type: TypeString, Required: false, Weight: 1,
		Variants: []string{"seller_city", "vendor_city", "supplier_city"}},
	{Path: BuyerName, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"buyer_name", "buyername", "buyerName", "customer_name", "client_name"}},
	{Path: BuyerTRN, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"buyer_trn", "buyer_tax_id", "buyertax", "buyerTax", "customer_trn", "client_trn"}},
	{Path: BuyerCountry, Type: TypeString, Required: true, Weight: 2,
		Variants: []string{"buyer_country", "buyerCountry", "customer_country", "client_country"}},
	{Path: BuyerCity, Type: TypeString, Required: false, Weight: 1,
		Variants: []string{"buyer_city", "customer_city", "client_city"}},
	{Path: LineSKU, Type: TypeString, Required: true, Weight: 1,
		Variants: []string{"sku", "linesku", "lineSku", "line_sku", "product_code", "item_code"}},
	{Path: LineDescription, Type: TypeString, Required: false, Weight: 1,
		Variants: []string{"description", "line_description", "product_description", "item_description"}},
	{Path: LineQty, Type: TypeNumber, Required: true, Weight: 1,
		Variants: []string{"qty", "quantity", "lineqty", "lineQty", "line_qty", "line_quantity"}},
	{Path: LineUnitPrice, Type: TypeNumber, Required: true, Weight: 1,
		Variants: []string{"unit_price", "price", "lineprice", "linePrice", "line_price", "item_price"}},
	{Path: LineTotal, Type: TypeNumber, Required: true, Weight: 1,
		Variants: []string{"line_total", "linetotal", "lineTotal", "total", "amount", "line_amount"}},
}

// AllowedCurrencies is the fixed currency allow-list checked by the
// CURRENCY_ALLOWED rule. Membership is case-insensitive.
var AllowedCurrencies = []string{"AED", "SAR", "MYR", "USD"}

// fieldsByPath indexes Fields for O(1) lookup. Built once at init.
var fieldsByPath = func() map[string]*Field {
	m := make(map[string]*Field, len(Fields))
	for i := range Fields {
		m[Fields[i].Path] = &Fields[i]
	}
	return m
}()

// Lookup returns the schema field for a canonical path, or nil when the
// path is not part of the schema.
func Lookup(path string) *Field {
	return fieldsByPath[path]
}

// TotalWeight is the sum of all field weights; the coverage score
// denominator.
func TotalWeight() int {
	total := 0
	for i := range Fields {
		total += Fields[i].Weight
	}
	return total
}

// RequiredPaths returns the canonical paths of all required fields in
// schema order.
func RequiredPaths() []string {
	paths := make([]string, 0, len(Fields))
	for i := range Fields {
		if Fields[i].Required {
			paths = append(paths, Fields[i].Path)
		}
	}
	return paths
}

// =============================================================================
// NAME NORMALIZATION
// =============================================================================

// Normalize canonicalizes a source field name for comparison: lowercase with
// underscores, spaces, and hyphens stripped. "Total_Excl VAT" and
// "total-excl-vat" normalize to the same string.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

// =============================================================================
// SYNONYM-RESOLVED VALUE LOOKUP
// =============================================================================
//
// The rule validators resolve logical fields through the same variant lists
// the detector matches against. Lookup is two-phase: first the flat row keys
// are compared (normalized) against the field's variants, then, for dotted
// paths like "seller.trn", the nested sub-object is consulted.

// Resolve finds the value of a canonical field within a row (or line item),
// tolerating any of the field's known synonyms. The second return is false
// when no synonymous key is present.
func Resolve(row types.Row, path string) (any, bool) {
	field := fieldsByPath[path]
	if field == nil {
		return nil, false
	}

	// Flat keys first, in variant priority order: "seller_trn" wins over
	// "vendor_trn" when both are present.
	for _, variant := range field.Variants {
		want := Normalize(variant)
		for key, value := range row {
			if Normalize(key) == want {
				return value, true
			}
		}
	}

	// Nested shape: "seller.trn" -> row["seller"]["trn"].
	if group, leaf, ok := strings.Cut(path, "."); ok && !strings.HasPrefix(path, "lines[]") {
		if sub, ok := row[group].(map[string]any); ok {
			if value, ok := sub[leaf]; ok {
				return value, true
			}
		}
	}

	return nil, false
}

// ResolveString resolves a canonical field to its trimmed string form.
// Scalar values of other types are stringified; the second return is false
// only when no synonymous key exists in the row.
func ResolveString(row types.Row, path string) (string, bool) {
	value, ok := Resolve(row, path)
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", true
	default:
		return "", false
	}
}
