package report

import (
	"testing"

	"github.com/complyflow/invoice-readiness/internal/types"
)

func TestPostureScore(t *testing.T) {
	cases := []struct {
		name     string
		q        types.Questionnaire
		expected int
	}{
		{"none", types.Questionnaire{}, 0},
		{"webhooks only", types.Questionnaire{Webhooks: true}, 40},
		{"sandbox only", types.Questionnaire{Sandbox: true}, 40},
		{"retries only", types.Questionnaire{Retries: true}, 20},
		{"webhooks and retries", types.Questionnaire{Webhooks: true, Retries: true}, 60},
		{"all capped at 100", types.Questionnaire{Webhooks: true, Sandbox: true, Retries: true}, 100},
	}
	for _, tc := range cases {
		if got := PostureScore(tc.q); got != tc.expected {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestOverallScore(t *testing.T) {
	cases := []struct {
		name                          string
		data, coverage, rules, posture int
		expected                      int
	}{
		{"all perfect", 100, 100, 100, 100, 100},
		{"all zero", 0, 0, 0, 0, 0},
		{"weighted mix", 80, 70, 60, 40, 67},  // 20 + 24.5 + 18 + 4 = 66.5
		{"rules dominate", 0, 0, 100, 0, 30},
		{"coverage dominates", 0, 100, 0, 0, 35},
		{"clamped high", 400, 400, 400, 400, 100},
		{"clamped low", -50, -50, -50, -50, 0},
	}
	for _, tc := range cases {
		if got := OverallScore(tc.data, tc.coverage, tc.rules, tc.posture); got != tc.expected {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.expected, got)
		}
	}
}

func TestReadinessLabel(t *testing.T) {
	cases := []struct {
		overall  int
		expected string
	}{
		{100, ReadinessHigh},
		{80, ReadinessHigh},
		{79, ReadinessMedium},
		{60, ReadinessMedium},
		{59, ReadinessLow},
		{0, ReadinessLow},
	}
	for _, tc := range cases {
		if got := ReadinessLabel(tc.overall); got != tc.expected {
			t.Fatalf("ReadinessLabel(%d) expected %s, got %s", tc.overall, tc.expected, got)
		}
	}
}
