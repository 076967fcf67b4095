package validator

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"anoa.com/newtongame/pkg/apperror"
)

func number(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		name    string
		in      *json.Number
		want    int
		wantErr string
	}{
		{"absent", nil, 0, "points is required"},
		{"empty", number(""), 0, "points is required"},
		{"integer", number("42"), 42, ""},
		{"negative accepted", number("-5"), -5, ""},
		{"fraction rejected", number("1.5"), 0, "points must be an integer"},
		{"whole float accepted", number("12.0"), 12, ""},
		{"exponent accepted", number("1e2"), 100, ""},
		{"negative whole float", number("-3.0"), -3, ""},
		{"huge float rejected", number("1e300"), 0, "points must be an integer"},
		{"not a number", number("NaN"), 0, "points must be an integer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInt("points", tc.in)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("expected error %q, got %v", tc.wantErr, err)
				}
				if !errors.Is(err, apperror.ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestNumericStringsDecodeIntoNumber(t *testing.T) {
	var body struct {
		Points *json.Number `json:"points"`
	}
	if err := json.Unmarshal([]byte(`{"points":"15"}`), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := ParseInt("points", body.Points)
	if err != nil || got != 15 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat("quizScore", number("79.9"))
	if err != nil || got != 79.9 {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := ParseFloat("quizScore", nil); err == nil || err.Error() != "quizScore is required" {
		t.Fatalf("expected required error, got %v", err)
	}
}

func TestParseIntString(t *testing.T) {
	if _, err := ParseIntString("level", "two"); err == nil || err.Error() != "level must be an integer" {
		t.Fatalf("expected integer error, got %v", err)
	}
	if n, err := ParseIntString("level", " 3 "); err != nil || n != 3 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestFormatValidationErrorTypeMismatch(t *testing.T) {
	var body struct {
		Points *json.Number `json:"points"`
	}
	err := json.Unmarshal([]byte(`{"points":true}`), &body)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if msg := FormatValidationError(err); msg != "points has the wrong type" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestFormatValidationErrorEmptyBody(t *testing.T) {
	if msg := FormatValidationError(io.EOF); msg != "request body is required" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !errors.Is(BindingError(io.EOF), apperror.ErrInvalidInput) {
		t.Fatalf("expected invalid input")
	}
}
