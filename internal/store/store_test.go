package store

import (
	"context"
	"errors"
	"testing"

	"github.com/complyflow/invoice-readiness/internal/report"
	"github.com/complyflow/invoice-readiness/internal/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(id string, overall int) *report.Report {
	return &report.Report{
		ReportID: id,
		Scores:   report.ComponentScores{Data: 100, Coverage: 80, Rules: 60, Posture: 40, Overall: overall},
		Gaps:     []string{"Missing required field: invoice.id"},
		Meta: report.Meta{
			RowsParsed:     2,
			Country:        "UAE",
			ERP:            "SAP",
			ReadinessLabel: report.ReadinessLabel(overall),
		},
	}
}

func TestUploadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	upload := &Upload{
		ID:           "u_000000000001",
		OriginalName: "invoices.csv",
		Format:       "csv",
		Country:      "UAE",
		ERP:          "SAP",
		RowsParsed:   2,
		TotalRows:    3,
		DataScore:    57,
		Rows: []types.Row{
			{"invoice_id": "A1", "total_incl_vat": 105.0},
			{"invoice_id": "A2", "total_incl_vat": 210.0},
		},
	}
	if err := s.SaveUpload(ctx, upload); err != nil {
		t.Fatalf("SaveUpload error: %v", err)
	}

	loaded, err := s.GetUpload(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetUpload error: %v", err)
	}
	if loaded.OriginalName != "invoices.csv" || loaded.DataScore != 57 || loaded.TotalRows != 3 {
		t.Fatalf("upload fields did not round-trip: %+v", loaded)
	}
	if len(loaded.Rows) != 2 || loaded.Rows[0]["invoice_id"] != "A1" {
		t.Fatalf("rows did not round-trip: %v", loaded.Rows)
	}
	if loaded.Rows[1]["total_incl_vat"] != 210.0 {
		t.Fatalf("numeric values must survive serialization, got %T", loaded.Rows[1]["total_incl_vat"])
	}
	if loaded.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestGetUploadNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetUpload(context.Background(), "u_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveReport(ctx, "u_1", testReport("r_000000000001", 74)); err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	loaded, err := s.GetReport(ctx, "r_000000000001")
	if err != nil {
		t.Fatalf("GetReport error: %v", err)
	}
	if loaded.Scores.Overall != 74 || loaded.Meta.ReadinessLabel != report.ReadinessMedium {
		t.Fatalf("report did not round-trip: %+v", loaded)
	}
	if len(loaded.Gaps) != 1 {
		t.Fatalf("gaps did not round-trip: %v", loaded.Gaps)
	}
}

func TestReportForUpload(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.ReportForUpload(ctx, "u_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unanalyzed upload expected ErrNotFound, got %v", err)
	}

	if err := s.SaveReport(ctx, "u_1", testReport("r_a", 50)); err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	summary, err := s.ReportForUpload(ctx, "u_1")
	if err != nil {
		t.Fatalf("ReportForUpload error: %v", err)
	}
	if summary.ReportID != "r_a" || summary.OverallScore != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRecentReportsAndDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"r_1", "r_2", "r_3"} {
		if err := s.SaveReport(ctx, "u_1", testReport(id, 80)); err != nil {
			t.Fatalf("SaveReport(%s) error: %v", id, err)
		}
	}

	summaries, err := s.RecentReports(ctx, 2)
	if err != nil {
		t.Fatalf("RecentReports error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected limit of 2 summaries, got %d", len(summaries))
	}

	if err := s.DeleteReport(ctx, "r_1"); err != nil {
		t.Fatalf("DeleteReport error: %v", err)
	}
	if _, err := s.GetReport(ctx, "r_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted report expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteReport(ctx, "r_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete expected ErrNotFound, got %v", err)
	}
}
