package currency

import "testing"

func TestLookupFallsBackToFirstEntry(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"USD", "USD"},
		{"usd", "USD"},
		{" eur ", "EUR"},
		{"XXX", "INR"},
		{"", "INR"},
	}
	for _, tc := range cases {
		if got := Lookup(tc.code); got.Code != tc.want {
			t.Errorf("Lookup(%q) = %s, want %s", tc.code, got.Code, tc.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("jpy") {
		t.Error("expected JPY to be supported")
	}
	if IsSupported("BTC") {
		t.Error("expected BTC to be unsupported")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0, "EUR", "€0.00"},
		{1000000, "INR", "Rs 1,000,000.00"},
		{99.999, "GBP", "£100.00"},
		{-1234.5, "USD", "$-1,234.50"},
		{42, "XXX", "Rs 42.00"}, // unknown code falls back to first entry
	}
	for _, tc := range cases {
		if got := Format(tc.amount, tc.code); got != tc.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}
