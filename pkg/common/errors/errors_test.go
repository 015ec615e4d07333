package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err:  NewValidationError("parallel", "cpu_count", -1, "cannot be negative"),
			want: "parallel: invalid cpu_count=-1 (cannot be negative)",
		},
		{
			name: "with hint",
			err:  NewValidationError("concurrency", "capacity", 0, "must be positive").WithHint("use a value greater than 0"),
			want: "concurrency: invalid capacity=0 (must be positive) - use a value greater than 0",
		},
		{
			name: "empty string value",
			err:  NewValidationError("scheduler", "cron_expr", "", "cannot be empty"),
			want: "scheduler: invalid cron_expr= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidConfiguration) {
				t.Error("ValidationError should match ErrInvalidConfiguration")
			}
		})
	}
}

func TestWithHintChains(t *testing.T) {
	err := NewValidationError("parallel", "thread_count", -2, "cannot be negative")
	if err.WithHint("use 0 for the default") != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "without context",
			err:  NewOperationError("source", "load", cause),
			want: "source.load failed: connection refused",
		},
		{
			name: "with context",
			err:  NewOperationError("parallel", "invoke", cause).WithContext("unit 3"),
			want: "parallel.invoke failed: connection refused (unit 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("OperationError should unwrap to its cause")
			}
		})
	}
}

func TestNewTransferError(t *testing.T) {
	cause := errors.New("gob: type not registered")
	err := NewTransferError("parallel", "submit", cause)

	if !errors.Is(err, ErrTransfer) {
		t.Error("transfer error should match ErrTransfer")
	}
	if !errors.Is(err, cause) {
		t.Error("transfer error should match the codec cause")
	}

	want := "parallel.submit failed: transfer failed: gob: type not registered"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClassifiers(t *testing.T) {
	verr := NewValidationError("parallel", "cpu_count", -1, "cannot be negative")
	terr := NewTransferError("parallel", "reply", errors.New("json: unsupported type"))

	tests := []struct {
		name       string
		err        error
		validation bool
		transfer   bool
	}{
		{"validation error", verr, true, false},
		{"wrapped validation error", fmt.Errorf("run: %w", verr), true, false},
		{"transfer error", terr, false, true},
		{"wrapped transfer error", fmt.Errorf("run: %w", terr), false, true},
		{"plain operation error", NewOperationError("parallel", "invoke", errors.New("boom")), false, false},
		{"timeout", ErrTimeout, false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.validation)
			}
			if got := IsTransferError(tt.err); got != tt.transfer {
				t.Errorf("IsTransferError() = %v, want %v", got, tt.transfer)
			}
		})
	}
}
