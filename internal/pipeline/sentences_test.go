package pipeline

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminators",
			text: "The sky is blue. Water is wet! Is gravity real? Yes.",
			want: []string{"The sky is blue.", "Water is wet!", "Is gravity real?", "Yes."},
		},
		{
			name: "trailing text without terminator",
			text: "First sentence. and a trailing fragment",
			want: []string{"First sentence.", "and a trailing fragment"},
		},
		{
			name: "newlines treated as spaces",
			text: "Line one.\nLine two.",
			want: []string{"Line one.", "Line two."},
		},
		{
			name: "abbreviation not split",
			text: "Around 3.5 billion people live in cities.",
			want: []string{"Around 3.5 billion people live in cities."},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
