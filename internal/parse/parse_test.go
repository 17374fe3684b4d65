package parse

import (
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		languages []string
		want      map[string]string
	}{
		{
			name:      "two languages in order",
			reply:     "Turkish: En büyük çiçeğe dokun.\nFrench: Touchez la plus grande fleur.",
			languages: []string{"turkish", "french"},
			want: map[string]string{
				"turkish": "En büyük çiçeğe dokun.",
				"french":  "Touchez la plus grande fleur.",
			},
		},
		{
			name:      "reversed request order with matching reply order",
			reply:     "French: Touchez la plus grande fleur.\nTurkish: En büyük çiçeğe dokun.",
			languages: []string{"french", "turkish"},
			want: map[string]string{
				"french":  "Touchez la plus grande fleur.",
				"turkish": "En büyük çiçeğe dokun.",
			},
		},
		{
			name:      "uppercase labels",
			reply:     "TURKISH: Merhaba\nGERMAN: Hallo",
			languages: []string{"turkish", "german"},
			want: map[string]string{
				"turkish": "Merhaba",
				"german":  "Hallo",
			},
		},
		{
			name:      "markdown decorated labels",
			reply:     "**Turkish:**\nMerhaba dünya\n\n**French:**\nBonjour le monde",
			languages: []string{"turkish", "french"},
			want: map[string]string{
				"turkish": "**\nMerhaba dünya\n\n**",
				"french":  "**\nBonjour le monde",
			},
		},
		{
			name:      "missing language yields sentinel",
			reply:     "Turkish: Merhaba",
			languages: []string{"turkish", "french"},
			want: map[string]string{
				"turkish": "Merhaba",
				"french":  "Error: Could not extract french localization",
			},
		},
		{
			name:      "lowercase labels do not extract",
			reply:     "turkish: Merhaba",
			languages: []string{"turkish"},
			want: map[string]string{
				"turkish": "Error: Could not extract turkish localization",
			},
		},
		{
			name:      "multiline span",
			reply:     "Turkish: Satır bir.\nSatır iki.\nFrench: Ligne une.",
			languages: []string{"turkish", "french"},
			want: map[string]string{
				"turkish": "Satır bir.\nSatır iki.",
				"french":  "Ligne une.",
			},
		},
		{
			name:      "explanation stripped",
			reply:     "Turkish: Merhaba\n\n**Explanation: a friendly greeting**",
			languages: []string{"turkish"},
			want: map[string]string{
				"turkish": "Merhaba",
			},
		},
	}

	var ex Positional
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.Extract(tt.reply, tt.languages)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys, want %d: %v", len(got), len(tt.want), got)
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("[%s] = %q, want %q", key, got[key], want)
				}
			}
		})
	}
}

// The same reply and language list must always extract the same spans.
func TestExtractDeterministic(t *testing.T) {
	var ex Positional
	reply := "Turkish: Merhaba\nFrench: Bonjour\nGerman: Hallo"
	languages := []string{"turkish", "french", "german"}

	first := ex.Extract(reply, languages)
	for i := 0; i < 10; i++ {
		again := ex.Extract(reply, languages)
		for key := range first {
			if again[key] != first[key] {
				t.Fatalf("run %d: [%s] = %q, want %q", i, key, again[key], first[key])
			}
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "Merhaba dünya", want: "Merhaba dünya"},
		{name: "surrounding whitespace", in: "  Merhaba \n", want: "Merhaba"},
		{name: "localization prefix", in: "Localization:**\n\nMerhaba", want: "Merhaba"},
		{name: "text prefix", in: "**Text:** Merhaba", want: "Merhaba"},
		{name: "explanation suffix", in: "Merhaba\n\n**Explanation: greeting**", want: "Merhaba"},
		{name: "localization notes suffix", in: "Merhaba\n\n**Localization Notes: kept informal**", want: "Merhaba"},
		{name: "inline notes marker", in: "Merhaba**Localization Notes: x", want: "Merhaba"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFailure(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "Error: Could not extract turkish localization", want: true},
		{in: "Error: request failed", want: true},
		{in: "[No translation available for XX]", want: true},
		{in: "Merhaba", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := IsFailure(tt.in); got != tt.want {
			t.Errorf("IsFailure(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
