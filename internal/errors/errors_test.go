package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
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
			name:    "expression error",
			code:    CodePathNotFound,
			wantMsg: "Path not found",
			wantCat: CategoryExpression,
		},
		{
			name:    "lifecycle error",
			code:    CodeInitAborted,
			wantMsg: "Component init aborted",
			wantCat: CategoryLifecycle,
		},
		{
			name:    "usage error",
			code:    CodeWatchMultipleVars,
			wantMsg: "Only one property can be watched at a time",
			wantCat: CategoryUsage,
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

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("render: %w", New(CodeTypeMismatch).WithDetail("a.b"))

	if !stderrors.Is(err, New(CodeTypeMismatch)) {
		t.Error("errors.Is should match on code through wrapping")
	}
	if stderrors.Is(err, New(CodePathNotFound)) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(err, CodeTypeMismatch) {
		t.Error("HasCode should find the wrapped code")
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(CodeFilterFailed).WithDetail("upper").Wrap(cause)

	got := err.Error()
	want := "E105: Filter failed (upper): boom"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeParse) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeParse)
	if FromError(orig, CodeConfigInvalid) != orig {
		t.Error("FromError should return an *Error unchanged")
	}

	wrapped := FromError(stderrors.New("x"), CodeConfigInvalid)
	if wrapped.Code != CodeConfigInvalid {
		t.Errorf("Code = %q, want %q", wrapped.Code, CodeConfigInvalid)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New(CodeUnknownComponent).WithDetail(`"user-card"`).Format()
	for _, want := range []string{"ERROR E202: Unknown component", `"user-card"`, "No component definition"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := New(CodeParse).WithDetail("a..b").FormatCompact(); got != "E103: Invalid expression a..b" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestAllCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}
