package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIDShapes(t *testing.T) {
	upload := NewUploadID()
	if !strings.HasPrefix(upload, "u_") || len(upload) != 2+idLength {
		t.Fatalf("unexpected upload ID %q", upload)
	}
	report := NewReportID()
	if !strings.HasPrefix(report, "r_") || len(report) != 2+idLength {
		t.Fatalf("unexpected report ID %q", report)
	}
	if NewReportID() == NewReportID() {
		t.Fatalf("report IDs must be unique")
	}
}

func TestReadFileLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	content, err := ReadFileLimited(path, 1024)
	if err != nil {
		t.Fatalf("ReadFileLimited error: %v", err)
	}
	if string(content) != "a,b\n1,2\n" {
		t.Fatalf("unexpected content %q", content)
	}

	if _, err := ReadFileLimited(path, 4); err == nil {
		t.Fatalf("expected too-large error")
	}
	if _, err := ReadFileLimited(filepath.Join(t.TempDir(), "nope"), 1024); err == nil {
		t.Fatalf("expected stat error for missing file")
	}
}

func TestReadAllLimited(t *testing.T) {
	content, err := ReadAllLimited(strings.NewReader("hello"), 16)
	if err != nil || string(content) != "hello" {
		t.Fatalf("expected hello, got %q (%v)", content, err)
	}
	if _, err := ReadAllLimited(strings.NewReader("this is too long"), 4); err == nil {
		t.Fatalf("expected over-limit error")
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := WriteJSONFile(path, map[string]int{"overall": 74}); err != nil {
		t.Fatalf("WriteJSONFile error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(content), `"overall": 74`) {
		t.Fatalf("unexpected file content %q", content)
	}
}
