package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

func TestRunText(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"-input", "testdata/march.yaml", "-log-level", "error"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("run returned %d, stderr: %s", code, errOut.String())
	}

	text := out.String()
	if !strings.Contains(text, "2024-03-15  alice") {
		t.Errorf("expected pre-assigned line for alice, got:\n%s", text)
	}
	if !strings.Contains(text, "seed 7") {
		t.Errorf("expected seed from the file, got:\n%s", text)
	}
	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if strings.Contains(text, d+"  alice") {
			t.Errorf("alice is blocked on %s", d)
		}
	}
}

func TestRunJSONIsReproducible(t *testing.T) {
	args := []string{"-input", "testdata/march.yaml", "-format", "json", "-seed", "99", "-attempts", "3", "-log-level", "error"}

	var first, second, errOut bytes.Buffer
	if code := run(args, &first, &errOut); code != 0 {
		t.Fatalf("run returned %d, stderr: %s", code, errOut.String())
	}
	if code := run(args, &second, &errOut); code != 0 {
		t.Fatalf("run returned %d, stderr: %s", code, errOut.String())
	}
	if first.String() != second.String() {
		t.Errorf("same seed produced different output")
	}

	var resp models.GenerateResponse
	if err := json.Unmarshal(first.Bytes(), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if resp.Seed != 99 {
		t.Errorf("seed = %d, want 99", resp.Seed)
	}
	if len(resp.Roster) != 31 {
		t.Errorf("roster has %d dates, want 31", len(resp.Roster))
	}
	if resp.Counts["alice"].Total == 0 {
		t.Errorf("alice should have at least the pre-assigned duty")
	}
}

func TestRunUnassignedExitCode(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"-input", "testdata/tight.yaml", "-seed", "1", "-log-level", "error"}, &out, &errOut)
	if code != 1 {
		t.Fatalf("run returned %d, want 1", code)
	}
	for _, d := range []string{"2024-03-03", "2024-03-04", "2024-03-07"} {
		if !strings.Contains(out.String(), d+"  -") {
			t.Errorf("expected %s unassigned, got:\n%s", d, out.String())
		}
	}
}

func TestRunInvalidInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(file, []byte("month: March\nrules:\n  staff: [A]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if code := run([]string{"-input", file}, &out, &errOut); code != 3 {
		t.Fatalf("run returned %d, want 3", code)
	}
	if !strings.Contains(errOut.String(), "YYYY-MM") {
		t.Errorf("expected month error, got %q", errOut.String())
	}
}

func TestRunUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Errorf("missing input: run returned %d, want 2", code)
	}
	if code := run([]string{"-input", "x.yaml", "-format", "csv"}, &out, &errOut); code != 2 {
		t.Errorf("bad format: run returned %d, want 2", code)
	}
}
