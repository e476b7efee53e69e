package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestImportError_Error(t *testing.T) {
	err := New(CategoryParse, CodeNoContent, "nothing extracted")
	if err.Error() != "nothing extracted" {
		t.Errorf("message = %q", err.Error())
	}

	err = err.WithSuggestion("check the statement language")
	if !strings.Contains(err.Error(), "suggestion: check the statement language") {
		t.Errorf("suggestion missing from %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(cause, CategoryBackup, CodeBackupWrite, "snapshot failed")

	if err.Category != CategoryBackup || err.Code != CodeBackupWrite {
		t.Errorf("category/code = %s/%s", err.Category, err.Code)
	}
	if err.Unwrap() != cause {
		t.Error("cause not preserved")
	}
	if Wrap(nil, CategoryBackup, CodeBackupWrite, "x") != nil {
		t.Error("wrapping nil must yield nil")
	}
}

func TestWithContext(t *testing.T) {
	err := New(CategoryInput, CodeEmptyInput, "empty").
		WithContext("source", "statement.pdf").
		WithContext("pages", 0)

	if err.Context["source"] != "statement.pdf" || err.Context["pages"] != 0 {
		t.Errorf("context = %v", err.Context)
	}
}

func TestInputError_Messages(t *testing.T) {
	if err := InputError(CodeEmptyInput, "no text"); err.Message != "statement text is empty" {
		t.Errorf("empty input message = %q", err.Message)
	}
	if err := InputError(CodeUnreadableText, "garbled"); !strings.Contains(err.Message, "garbled") {
		t.Errorf("unreadable message = %q", err.Message)
	}
}

func TestResolveError_Codes(t *testing.T) {
	err := ResolveError(CodeMissingResolution, "conflict-pf-1", nil)
	if err.Category != CategoryResolve {
		t.Errorf("category = %s", err.Category)
	}
	if err.Context["conflict_id"] != "conflict-pf-1" {
		t.Errorf("context = %v", err.Context)
	}
	if !strings.Contains(err.Suggestion, "resolution") {
		t.Errorf("suggestion = %q", err.Suggestion)
	}
}

func TestAsImportError(t *testing.T) {
	plain := fmt.Errorf("plain")
	if _, ok := AsImportError(plain); ok {
		t.Error("plain error detected as ImportError")
	}

	wrapped := fmt.Errorf("outer: %w", New(CategoryInternal, CodeUnexpectedError, "inner"))
	found, ok := AsImportError(wrapped)
	if !ok || found.Code != CodeUnexpectedError {
		t.Errorf("unwrap through chain failed: %v, %v", found, ok)
	}
}

func TestWrapIfNeeded(t *testing.T) {
	original := New(CategoryBackup, CodeBackupRead, "read failed")
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "x"); got != original {
		t.Error("existing ImportError must pass through unchanged")
	}

	plain := fmt.Errorf("plain")
	got := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if got.Category != CategoryInternal || got.Cause != plain {
		t.Errorf("wrapped = %+v", got)
	}
	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "x") != nil {
		t.Error("nil must stay nil")
	}
}
