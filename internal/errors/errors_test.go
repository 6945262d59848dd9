package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Config file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "scenario error",
			code:    "E204",
			wantMsg: "Path not found",
			wantCat: CategoryScenario,
		},
		{
			name:    "cli error",
			code:    "E301",
			wantMsg: "Invalid output format",
			wantCat: CategoryCLI,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryRuntime, "watcher %q failed", "total")
	if err.Message != `watcher "total" failed` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryRuntime {
		t.Errorf("Category = %q, want %q", err.Category, CategoryRuntime)
	}
	if err.Error() != `watcher "total" failed` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOzError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("read-only")
	err := New("E205").Wrap(cause)

	if got, want := err.Error(), "E205: Step failed: read-only"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var oe *OzError
	if !stderrors.As(error(err), &oe) || oe.Code != "E205" {
		t.Error("errors.As should find the OzError")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E205") != nil {
		t.Error("FromError(nil) should be nil")
	}

	original := New("E204")
	if FromError(original, "E205") != original {
		t.Error("FromError should return existing OzErrors unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E205")
	if wrapped.Code != "E205" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestWithLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := "document:\n  a: 1\nsteps:\n  - op: set\n    path: b.c\n    value: 2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E204").WithLocation(path, 5, 11)
	if err.Location.String() != path+":5:11" {
		t.Errorf("Location = %q", err.Location.String())
	}
	want := []string{"steps:", "  - op: set", "    path: b.c", "    value: 2"}
	if len(err.Context) != len(want) {
		t.Fatalf("Context = %q, want %q", err.Context, want)
	}
	for i := range want {
		if err.Context[i] != want[i] {
			t.Errorf("Context[%d] = %q, want %q", i, err.Context[i], want[i])
		}
	}
}

func TestWithLocationMissingFile(t *testing.T) {
	err := New("E204").WithLocation("does-not-exist.yaml", 3, 0)
	if err.Context != nil {
		t.Errorf("Context = %q, want nil", err.Context)
	}
	if err.Location.String() != "does-not-exist.yaml:3" {
		t.Errorf("Location = %q", err.Location.String())
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := &OzError{
		Code:       "E204",
		Message:    "Path not found",
		Location:   &Location{File: "s.yaml", Line: 3, Column: 5},
		Context:    []string{"a:", "b:", "  c: 1", "d:", "e:"},
		Detail:     "segment c is missing",
		Suggestion: "Check the path",
		Wrapped:    stderrors.New("no such key"),
	}
	out := err.Format()

	for _, want := range []string{
		"ERROR E204: Path not found",
		"s.yaml:3:5",
		"→    3 │   c: 1",
		"│     ^",
		"segment c is missing",
		"Cause: no such key",
		"Hint: Check the path",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E203").WithLocation("s.yaml", 7, 0)
	if got, want := err.FormatCompact(), "s.yaml:7: E203: Unknown step operation"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E201").WithSuggestion("Check the path").Wrap(stderrors.New("missing"))
	err.Location = &Location{File: "s.yaml", Line: 2}

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jerr)
	}
	if decoded["code"] != "E201" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["category"] != "scenario" {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["cause"] != "missing" {
		t.Errorf("cause = %v", decoded["cause"])
	}
	loc, ok := decoded["location"].(map[string]any)
	if !ok || loc["file"] != "s.yaml" || loc["line"] != float64(2) {
		t.Errorf("location = %v", decoded["location"])
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New("E302"))
	if !strings.Contains(buf.String(), "ERROR E302: Devtools server failed") {
		t.Errorf("Print(OzError) = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Print(error) = %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != "E101" {
		t.Fatalf("GetAllCodes() = %v", codes)
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s is incomplete: %+v", code, tmpl)
		}
	}

	Register("E399", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "E399")
	if New("E399").Message != "Custom" {
		t.Error("registered template not used")
	}
}
