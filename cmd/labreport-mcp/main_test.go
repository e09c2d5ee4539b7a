package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/labreport-mcp/internal/labtable"
)

const tablesJSON = `[
  {"header": ["Test", "Result", "Normal Range", "Units"],
   "rows": [["Hemoglobin", "11.2", "13.0-17.0", "g/dL"],
            ["Platelet Count", "250", "150-400", "10^3/uL"],
            ["Comment", null, null, null]]}
]`

// runApp runs the CLI with args and returns what it wrote to stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	err := app.Run(context.Background(), append([]string{"labreport-mcp", "--log-level", "error"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestInterpretCommand(t *testing.T) {
	path := writeFile(t, "tables.json", tablesJSON)

	out, err := runApp(t, "", "interpret", path)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	var res labtable.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}
	if !res.Success {
		t.Error("expected is_success=true")
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(res.Records), res.Records)
	}
	if !res.Records[0].OutOfRange {
		t.Errorf("expected hemoglobin 11.2 to be out of range: %+v", res.Records[0])
	}
	if res.Records[1].OutOfRange {
		t.Errorf("expected platelets 250 to be in range: %+v", res.Records[1])
	}
}

func TestInterpretCommandStdin(t *testing.T) {
	out, err := runApp(t, tablesJSON, "interpret", "-")
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if !strings.Contains(out, `"test_name": "Platelet Count"`) {
		t.Fatalf("expected platelet record in output, got %s", out)
	}
}

func TestInterpretCommandErrors(t *testing.T) {
	if _, err := runApp(t, "", "interpret"); !errors.Is(err, errTablesFileRequired) {
		t.Fatalf("expected errTablesFileRequired, got %v", err)
	}

	bad := writeFile(t, "bad.json", `{"header": []}`)
	if _, err := runApp(t, "", "interpret", bad); err == nil {
		t.Fatal("expected error for a non-array tables file")
	}
}

func TestExtractCommandRequiresFiles(t *testing.T) {
	if _, err := runApp(t, "", "extract"); !errors.Is(err, errFileRequired) {
		t.Fatalf("expected errFileRequired, got %v", err)
	}
}

func TestExtractCommandUnreadableDocument(t *testing.T) {
	notImage := writeFile(t, "report.png", "not an image")

	out, err := runApp(t, "", "extract", notImage)
	if !errors.Is(err, errDocumentsFailed) {
		t.Fatalf("expected errDocumentsFailed, got %v", err)
	}

	var res labtable.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}
	if res.Success || len(res.Records) != 0 {
		t.Fatalf("expected failed empty result, got %+v", res)
	}
}

func TestExtractCommandAnalysis(t *testing.T) {
	out, err := runApp(t, "", "extract", "--analysis", "/nonexistent/report.png")
	if !errors.Is(err, errDocumentsFailed) {
		t.Fatalf("expected errDocumentsFailed, got %v", err)
	}

	var entry extractOutput
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output is not an analysis entry: %v\n%s", err, out)
	}
	if entry.File != "/nonexistent/report.png" {
		t.Errorf("unexpected file %q", entry.File)
	}
	if entry.Error == "" {
		t.Error("expected the read error to be reported")
	}
	if entry.Analysis != nil || entry.Result.Success {
		t.Errorf("expected no analysis and a failed result, got %+v", entry)
	}
}

func TestInvalidOCRSettings(t *testing.T) {
	path := writeFile(t, "report.png", "x")

	_, err := runApp(t, "", "--psm", "99", "extract", path)
	if err == nil || !strings.Contains(err.Error(), "invalid OCR settings") {
		t.Fatalf("expected invalid OCR settings error, got %v", err)
	}

	_, err = runApp(t, "", "--min-confidence", "1.5", "extract", path)
	if err == nil || !strings.Contains(err.Error(), "invalid OCR settings") {
		t.Fatalf("expected invalid OCR settings error, got %v", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(context.Background(), []string{"labreport-mcp", "--log-level", "chatty", "version"})
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected invalid log level error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("LABREPORT_OCR_LANG", "eng+deu")

	out, err := runApp(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "labreport-mcp "+Version) {
		t.Errorf("expected version header, got %q", out)
	}
	if !strings.Contains(out, "Languages:  eng+deu") {
		t.Errorf("expected languages from environment, got %q", out)
	}
}
