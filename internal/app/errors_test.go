package app

import (
	"errors"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "load config"}, "load config"},
		{"op and target", &OperationError{Op: "open", Target: "art.json"}, "open art.json"},
		{
			"op, target, and context",
			&OperationError{Op: "open", Target: "art.json", Context: "layer 2"},
			"open art.json (layer 2)",
		},
		{
			"full error chain",
			&OperationError{Op: "open", Target: "art.json", Context: "layer 2", Err: errors.New("bad colors")},
			"open art.json (layer 2): bad colors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_WithContext(t *testing.T) {
	err := NewOperationError("export", "frame.png", nil).WithContext("disk full")
	if err.Context != "disk full" {
		t.Errorf("Context = %q, want %q", err.Context, "disk full")
	}

	var nilErr *OperationError
	if nilErr.WithContext("x") != nil {
		t.Error("WithContext on nil receiver should return nil")
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	inner := errors.New("inner error")
	err := NewOperationError("open", "file.txt", inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("Unwrap() on nil receiver should return nil")
	}
}

func TestInitError(t *testing.T) {
	err := &InitError{Component: "screen", Err: ErrNoBackend}
	if got, want := err.Error(), "init screen: no screen attached"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNoBackend) {
		t.Error("errors.Is should find the wrapped error")
	}
}
