package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op and message",
			err:  E(Op("project.Scan"), "bad directory"),
			want: "project.Scan: bad directory",
		},
		{
			name: "op message and wrapped error",
			err:  E(Op("report.LoadFromReport"), "report_x.html", stderrors.New("no embedded JSON")),
			want: "report.LoadFromReport: report_x.html: no embedded JSON",
		},
		{
			name: "wrapped error only",
			err:  E(stderrors.New("boom")),
			want: "boom",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindParse, "parse"},
		{KindNaming, "naming"},
		{KindFormat, "format"},
		{KindIO, "io"},
		{KindConfig, "config"},
		{KindDatabase, "database"},
		{KindUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := E(Op("report.parseHTML"), KindParse, "no marker line")
	if !IsKind(err, KindParse) {
		t.Error("expected IsKind to report KindParse")
	}
	if IsKind(err, KindNaming) {
		t.Error("did not expect KindNaming")
	}
	if IsKind(stderrors.New("plain"), KindParse) {
		t.Error("plain errors have no kind")
	}

	// Kind must survive another layer of wrapping.
	wrapped := fmt.Errorf("scanning: %w", err)
	if !IsKind(wrapped, KindParse) {
		t.Error("expected IsKind to unwrap to KindParse")
	}
}

func TestGetKind(t *testing.T) {
	if got := GetKind(E(KindNaming)); got != KindNaming {
		t.Errorf("GetKind = %v, want KindNaming", got)
	}
	if got := GetKind(stderrors.New("plain")); got != KindUnknown {
		t.Errorf("GetKind = %v, want KindUnknown", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Op("op"), nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if WrapMsg(Op("op"), "msg", nil) != nil {
		t.Error("WrapMsg(nil) should be nil")
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := Wrap(Op("op"), inner)
	if !stderrors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}
