package ingredient

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple lowercase", input: "tomato", want: "tomato"},
		{name: "mixed case", input: "Thịt Gà", want: "thit-ga"},
		{name: "scallion", input: "Hành Lá", want: "hanh-la"},
		{name: "tone marks on u", input: "nước mắm", want: "nuoc-mam"},
		{name: "dong character", input: "đậu phụ", want: "dau-phu"},
		{name: "whitespace runs", input: "  thịt   ba  chỉ ", want: "thit-ba-chi"},
		{name: "punctuation stripped", input: "cà chua (chín)!", want: "ca-chua-chin"},
		{name: "digits kept", input: "trứng gà x2", want: "trung-ga-x2"},
		{name: "underscores become hyphens", input: "ca_rot", want: "ca-rot"},
		{name: "leading trailing hyphens trimmed", input: "--tỏi--", want: "toi"},
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "***", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Thịt Gà", "Hành Lá", "nước mắm ngon", "Cà rốt, loại to", "rau-muong"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "commas",
			input: "thịt gà, hành lá, tỏi",
			want:  []string{"thịt gà", "hành lá", "tỏi"},
		},
		{
			name:  "vietnamese conjunction",
			input: "thịt bò và rau muống",
			want:  []string{"thịt bò", "rau muống"},
		},
		{
			name:  "english conjunction and ampersand",
			input: "chicken and rice & garlic",
			want:  []string{"chicken", "rice", "garlic"},
		},
		{
			name:  "semicolons with empties",
			input: "tôm;; mực ; ",
			want:  []string{"tôm", "mực"},
		},
		{
			name:  "single item",
			input: "cá basa",
			want:  []string{"cá basa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeList_Deduplicates(t *testing.T) {
	got := NormalizeList("Thịt Gà, thit ga và Hành Lá")
	want := []string{"thit-ga", "hanh-la"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList = %v, want %v", got, want)
	}
}
