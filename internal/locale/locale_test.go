package locale

import "testing"

func TestGet_FallsBackToEnglish(t *testing.T) {
	p := Get(Language("xx"))
	if p.Language != English {
		t.Errorf("expected English fallback, got %s", p.Language)
	}
}

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		lang  Language
		token string
		want  int
	}{
		{Dutch, "nov", 11},
		{Dutch, "mrt", 3},
		{Dutch, "MEI", 5},
		{French, "août", 8},
		{French, "janv", 1},
		{German, "dez", 12},
		{Spanish, "ene", 1},
		{Portuguese, "out", 10},
		{Italian, "ott", 10},
		{English, "sept", 9},
	}

	for _, tt := range tests {
		got, ok := Get(tt.lang).MonthNumber(tt.token)
		if !ok || got != tt.want {
			t.Errorf("MonthNumber(%s, %q) = (%d, %v), want %d", tt.lang, tt.token, got, ok, tt.want)
		}
	}
}

func TestMonthNumberAny(t *testing.T) {
	// "mrt" only exists in the Dutch table.
	if n, ok := MonthNumberAny("mrt"); !ok || n != 3 {
		t.Errorf("MonthNumberAny(mrt) = (%d, %v), want 3", n, ok)
	}
	if _, ok := MonthNumberAny("zzz"); ok {
		t.Error("MonthNumberAny(zzz) should not match")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"dutch by keywords and months", "Uw vlucht naar Berlijn op 30 nov 2025. Saldo: 1.000 Miles. Verdiend in okt en mei.", Dutch},
		{"french", "Votre vol vers Paris. Solde de miles au 30 nov 2025. Relevé des miles gagnés.", French},
		{"german", "Ihr Flug nach Berlin. Gesammelt im Dez. Übersicht über Ihre Meilen nach Monat.", German},
		{"english", "Your flight to Berlin. Miles balance and earned XP statement from January.", English},
		{"spanish", "Su vuelo a Madrid. Saldo de millas. Resumen de millas ganadas en ene y dic.", Spanish},
		{"no signal defaults to english", "1234567890", English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectLanguage_Deterministic(t *testing.T) {
	text := "Uw vlucht naar Berlijn op 30 nov 2025, saldo 1.000 Miles"
	first := DetectLanguage(text)
	for i := 0; i < 10; i++ {
		if got := DetectLanguage(text); got != first {
			t.Fatalf("detection not deterministic: %s vs %s", got, first)
		}
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		text string
		user string
		want string
	}{
		{"Purchase of Miles €45.00", "", "EUR"},
		{"Purchase of Miles £30.00", "", "GBP"},
		{"Purchase of Miles $40.00", "CAD", "CAD"},
		{"Purchase of Miles $40.00", "", "USD"},
		{"Achat de miles 120 PLN", "", "PLN"},
		{"Purchase 300 kr bonus", "", "SEK"},
		{"no currency anywhere", "CHF", "CHF"},
		{"no currency anywhere", "", "EUR"},
	}

	for _, tt := range tests {
		if got := DetectCurrency(tt.text, tt.user); got != tt.want {
			t.Errorf("DetectCurrency(%q, %q) = %s, want %s", tt.text, tt.user, got, tt.want)
		}
	}
}
