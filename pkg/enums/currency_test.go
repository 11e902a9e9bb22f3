package enums

import "testing"

func TestParseCurrency(t *testing.T) {
	cases := map[string]Currency{
		"usd":   CurrencyUSD,
		" USD ": CurrencyUSD,
		"EUR":   CurrencyEUR,
	}
	for raw, want := range cases {
		got, err := ParseCurrency(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("expected %q to parse as %s, got %s", raw, want, got)
		}
	}
}

func TestParseCurrencyRejectsUnknown(t *testing.T) {
	if _, err := ParseCurrency("gbp"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
	if _, err := ParseCurrency(""); err == nil {
		t.Fatal("expected error for empty currency")
	}
}

func TestCurrencyIsValid(t *testing.T) {
	if !CurrencyUSD.IsValid() || !CurrencyEUR.IsValid() {
		t.Fatal("expected supported currencies to be valid")
	}
	if Currency("gbp").IsValid() {
		t.Fatal("expected unsupported currency to be invalid")
	}
}
