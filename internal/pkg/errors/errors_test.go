package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStoreError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StoreError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(KindKeyExists, "delta-1.json already exists"),
			want: "KEY_EXISTS: delta-1.json already exists",
		},
		{
			name: "with wrapped error",
			err:  Wrap(KindIoError, "write delta-1.json", fmt.Errorf("disk full")),
			want: "IO_ERROR: write delta-1.json: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	err := Wrap(KindIoError, "msg", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should match the wrapped cause")
	}
	if !errors.Is(err, ErrIoError) {
		t.Error("errors.Is should match the Kind's sentinel")
	}
	if errors.Is(err, ErrJsonError) {
		t.Error("errors.Is should not match an unrelated sentinel")
	}
}

func TestIs(t *testing.T) {
	err := New(KindCommandOffSetError, "offset 10 >= total 5")
	wrapped := fmt.Errorf("command_history: %w", err)

	if !Is(wrapped, KindCommandOffSetError) {
		t.Error("Is() should match through fmt.Errorf wrapping")
	}
	if Is(wrapped, KindKeyExists) {
		t.Error("Is() should not match a different Kind")
	}
}
