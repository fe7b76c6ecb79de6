package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/wrapped/internal/shared"
)

func TestParseTerm(t *testing.T) {
	tt := []struct {
		name    string
		input   string
		want    Term
		wantErr bool
	}{
		{name: "short", input: "short", want: TermShort},
		{name: "mixed case and spaces", input: "  Medium ", want: TermMedium},
		{name: "christmas", input: "christmas", want: TermChristmas},
		{name: "halloween", input: "HALLOWEEN", want: TermHalloween},
		{name: "unknown", input: "yearly", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTerm(tc.input)
			if tc.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTermTitle(t *testing.T) {
	tt := []struct {
		term Term
		want string
	}{
		{TermShort, "Short-Term Wrapped"},
		{TermMedium, "Medium-Term Wrapped"},
		{TermLong, "Long-Term Wrapped"},
		{TermChristmas, "Christmas-Term Wrapped"},
		{TermHalloween, "Halloween-Term Wrapped"},
	}

	for _, tc := range tt {
		t.Run(string(tc.term), func(t *testing.T) {
			if got := tc.term.Title(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		var nilCreds *Credentials
		if nilCreds.Valid() {
			t.Error("nil credentials should not be valid")
		}
		if (&Credentials{RefreshToken: "r"}).Valid() {
			t.Error("credentials without access token should not be valid")
		}
		if !(&Credentials{AccessToken: "a"}).Valid() {
			t.Error("credentials with access token should be valid")
		}
	})

	t.Run("OAuth2", func(t *testing.T) {
		tok := Credentials{AccessToken: "a", RefreshToken: "r"}.OAuth2()
		if tok.AccessToken != "a" || tok.RefreshToken != "r" {
			t.Errorf("unexpected token values: %+v", tok)
		}
		if tok.Type() != "Bearer" {
			t.Errorf("expected Bearer token type, got %s", tok.Type())
		}
	})
}

func TestRegisterRequestValidate(t *testing.T) {
	tt := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{name: "valid", req: RegisterRequest{Username: "u", Email: "u@example.com", Password: "p"}},
		{name: "missing username", req: RegisterRequest{Email: "u@example.com", Password: "p"}, wantErr: shared.ErrMissingArgument},
		{name: "missing password", req: RegisterRequest{Username: "u", Email: "u@example.com"}, wantErr: shared.ErrMissingArgument},
		{name: "bad email", req: RegisterRequest{Username: "u", Email: "nope", Password: "p"}, wantErr: shared.ErrInvalidArgument},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestExportRecordValidate(t *testing.T) {
	rec := NewExportRecord("snap-1", "Short-Term Wrapped", "csv", "/tmp/out.csv")
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CreatedAt().IsZero() {
		t.Error("created at should be set")
	}

	rec.Path = ""
	if err := rec.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
