package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocumentID_Stable(t *testing.T) {
	a := DocumentID("leave.csv", 3, 0)
	b := DocumentID("leave.csv", 3, 0)
	if a != b {
		t.Fatalf("expected stable ids, got %s and %s", a, b)
	}
	if a == DocumentID("leave.csv", 3, 1) {
		t.Fatal("expected different parts to get different ids")
	}
	if a == DocumentID("payroll.csv", 3, 0) {
		t.Fatal("expected different files to get different ids")
	}
}

func TestCreateFolder_Nested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := CreateFolder(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	PrettyPrint(&buf, map[string]int{"rows": 3})
	if !strings.Contains(buf.String(), `"rows": 3`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
