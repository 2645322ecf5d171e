package models

import (
	"errors"
	"io"
	"testing"
)

func TestExportError_Unwrap(t *testing.T) {
	err := NewExportError(ErrCodeWrite, "create alice_games.csv", io.ErrClosedPipe)
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if got := err.Error(); got != "WRITE_FAILED: create alice_games.csv: io: read/write on closed pipe" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExportError_ToDetail(t *testing.T) {
	tests := []struct {
		name string
		err  *ExportError
		want ErrorDetail
	}{
		{
			name: "plain",
			err:  NewExportError(ErrCodeInvalidInput, "empty profile", nil),
			want: ErrorDetail{Code: ErrCodeInvalidInput, Message: "empty profile"},
		},
		{
			name: "foreign cause hidden",
			err:  NewExportError(ErrCodeFetch, "fetch page 2", errors.New("dial tcp 10.0.0.1:443")),
			want: ErrorDetail{Code: ErrCodeFetch, Message: "fetch page 2"},
		},
		{
			name: "nested export error",
			err: NewExportError(ErrCodeStrictViolation, "page 1 entry 3",
				NewExportError(ErrCodeParseDefaulted, "title missing", nil)),
			want: ErrorDetail{Code: ErrCodeStrictViolation, Message: "page 1 entry 3: title missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := *tt.err.ToDetail(); got != tt.want {
				t.Errorf("ToDetail() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
