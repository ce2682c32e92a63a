package closure

import (
	"errors"
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Param
	}{
		{"empty", "", nil},
		{"blank", "  \t ", nil},
		{
			name: "required",
			text: "a, $b ,c",
			want: []Param{{Name: "a"}, {Name: "$b"}, {Name: "c"}},
		},
		{
			name: "defaults",
			text: "a, b = 2, c = \"x, y\"",
			want: []Param{
				{Name: "a"},
				{Name: "b", Default: 2, Optional: true},
				{Name: "c", Default: "x, y", Optional: true},
			},
		},
		{
			name: "nested comma in default",
			text: "xs = [1, 2]",
			want: []Param{{Name: "xs", Default: []any{1, 2}, Optional: true}},
		},
		{
			name: "unicode name",
			text: "größe",
			want: []Param{{Name: "größe"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d params %v, want %d", len(got), got, len(tt.want))
			}

			for i := range got {
				if got[i].Name != tt.want[i].Name ||
					got[i].Optional != tt.want[i].Optional ||
					FormatResult(got[i].Default) != FormatResult(tt.want[i].Default) {
					t.Errorf("param %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseParams_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty entry", "a,,b", ErrInvalidParam},
		{"trailing comma", "a, b,", ErrInvalidParam},
		{"leading digit", "1a", ErrInvalidParam},
		{"punctuation", "a-b", ErrInvalidParam},
		{"duplicate", "a, a", ErrInvalidParam},
		{"required after optional", "a = 1, b", ErrInvalidParam},
		{"empty default", "a =", ErrInvalidParam},
		{"bad default", "a = nosuchname", ErrInvalidParam},
		{"alias", "_", ErrReservedName},
		{"lookup function", "__closure__", ErrReservedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseParams(%q): got %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}

func TestParam_String(t *testing.T) {
	if s := (Param{Name: "a"}).String(); s != "a" {
		t.Errorf("got %q", s)
	}

	if s := (Param{Name: "b", Default: 2, Optional: true}).String(); s != "b = 2" {
		t.Errorf("got %q", s)
	}
}
