package teammatch

import "testing"

func TestNormalize_StripPunctuationAndStopTokens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FC Barcelona", "barcelona"},
		{"Granada CF", "granada"},
		{"Paris Saint-Germain", "paris saint germain"},
		{"  Sporting   Club de Portugal ", "portugal"},
		{"Newcastle United", "newcastle"},
		{"St. Étienne", "st étienne"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity_ExactAfterNormalization(t *testing.T) {
	pairs := [][2]string{
		{"FC Barcelona", "Barcelona"},
		{"Granada CF", "granada"},
		{"Real Sociedad", "Real Sociedad"},
		{"Newcastle United", "Newcastle"},
	}
	for _, p := range pairs {
		if got := Similarity(p[0], p[1]); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", p[0], p[1], got)
		}
	}
}

func TestSimilarity_AliasGroups(t *testing.T) {
	pairs := [][2]string{
		{"PSG", "Paris Saint-Germain"},
		{"Man City", "Manchester City"},
		{"Spurs", "Tottenham Hotspur"},
		{"OM", "Marseille"},
	}
	for _, p := range pairs {
		if got := Similarity(p[0], p[1]); got < 0.9 {
			t.Errorf("Similarity(%q, %q) = %v, want >= 0.9", p[0], p[1], got)
		}
	}
}

func TestSimilarity_TokenOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		// "real" casa, "madrid" não
		{"Real Madrid", "Real Betis", 0.5},
		// nenhum token em comum
		{"FC Andorra", "Granada CF", 0},
		// só tokens curtos dos dois lados
		{"AC", "CF", 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity_Deterministic(t *testing.T) {
	a, b := "Olympique Lyonnais", "Lyon"
	first := Similarity(a, b)
	for i := 0; i < 5; i++ {
		if got := Similarity(a, b); got != first {
			t.Fatalf("Similarity not deterministic: %v then %v", first, got)
		}
	}
}
