package report

import (
	"reflect"
	"testing"

	"github.com/complyflow/invoice-readiness/internal/detector"
	"github.com/complyflow/invoice-readiness/internal/rules"
	"github.com/complyflow/invoice-readiness/internal/schema"
)

func TestSynthesizeGapsRequiredFieldsOnly(t *testing.T) {
	coverage := detector.Coverage{
		Missing: []string{schema.InvoiceID, schema.SellerCity, schema.BuyerCity, schema.LineDescription},
	}
	gaps := SynthesizeGaps(coverage, nil)
	expected := []string{"Missing required field: invoice.id"}
	if !reflect.DeepEqual(gaps, expected) {
		t.Fatalf("expected %v, got %v", expected, gaps)
	}
}

func TestSynthesizeGapsPerFinding(t *testing.T) {
	findings := []rules.Finding{
		{Rule: rules.RuleTotalsBalance, OK: true},
		{Rule: rules.RuleTotalsBalance, OK: false, ExampleLine: 1},
		{Rule: rules.RuleTotalsBalance, OK: false, ExampleLine: 3},
		{Rule: rules.RuleCurrencyAllowed, OK: false, Value: "EUR"},
		{Rule: rules.RuleTRNPresent, OK: false},
		{Rule: rules.RuleDateISO, OK: false, Value: "31/01/2025"},
		{Rule: rules.RuleLineMath, OK: false},
	}
	gaps := SynthesizeGaps(detector.Coverage{}, findings)

	// One gap per failing finding, passing findings skipped.
	expected := []string{
		"Invoice totals do not balance correctly",
		"Invoice totals do not balance correctly",
		"Invalid currency: EUR",
		"Missing Tax Registration Numbers (TRN)",
		"Date format is not ISO standard (YYYY-MM-DD)",
		"Line item calculations are incorrect",
	}
	if !reflect.DeepEqual(gaps, expected) {
		t.Fatalf("expected %v, got %v", expected, gaps)
	}
}

func TestSynthesizeGapsCleanReport(t *testing.T) {
	gaps := SynthesizeGaps(detector.Coverage{}, []rules.Finding{
		{Rule: rules.RuleTotalsBalance, OK: true},
	})
	if len(gaps) != 0 {
		t.Fatalf("clean report expected no gaps, got %v", gaps)
	}
}
