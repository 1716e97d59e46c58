package symbol

import (
	"errors"
	"strings"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindQR, "qr"},
		{KindCode128, "code128"},
		{KindUnknown, "unknown"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKind_DisplayName(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindQR, "QR Code"},
		{KindCode128, "Code 128"},
		{KindUnknown, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Kind
		wantErr  bool
	}{
		{"canonical qr", "qr", KindQR, false},
		{"display name qr", "QR Code", KindQR, false},
		{"joined qr", "qrcode", KindQR, false},
		{"canonical code128", "code128", KindCode128, false},
		{"display name code128", "Code 128", KindCode128, false},
		{"generic barcode", "barcode", KindCode128, false},
		{"padded", "  qr  ", KindQR, false},
		{"empty", "", KindUnknown, true},
		{"unknown", "pdf417", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseECLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ECLevel
		wantErr  bool
	}{
		{"empty defaults to low", "", ECLow, false},
		{"low", "low", ECLow, false},
		{"single letter", "m", ECMedium, false},
		{"display name", "Quartile (25%)", ECQuartile, false},
		{"high", "HIGH", ECHigh, false},
		{"unknown", "ultra", ECLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseECLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseECLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseECLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMaxPayload(t *testing.T) {
	tests := []struct {
		level    ECLevel
		expected int
	}{
		{ECLow, 2953},
		{ECMedium, 2331},
		{ECQuartile, 1663},
		{ECHigh, 1273},
		{ECLevel(99), 2953}, // Unknown levels fall back to low
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := MaxPayload(tt.level); got != tt.expected {
				t.Errorf("MaxPayload(%v) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    Kind
		level   ECLevel
		wantErr error
	}{
		{"valid qr", "https://example.com", KindQR, ECLow, nil},
		{"valid code128", "ITEM-0042", KindCode128, ECLow, nil},
		{"empty", "", KindQR, ECLow, ErrEmptyPayload},
		{"whitespace only", "   \n\t", KindQR, ECLow, ErrEmptyPayload},
		{"code128 non-ascii", "prix 10€", KindCode128, ECLow, ErrNotASCII},
		{"code128 multibyte", "商品", KindCode128, ECLow, ErrNotASCII},
		{"qr allows unicode", "caffè ☕", KindQR, ECLow, nil},
		{"qr at capacity", strings.Repeat("a", 2953), KindQR, ECLow, nil},
		{"qr over capacity", strings.Repeat("a", 2954), KindQR, ECLow, ErrPayloadTooLong},
		{"qr over high capacity", strings.Repeat("a", 1274), KindQR, ECHigh, ErrPayloadTooLong},
		{"unknown kind", "data", KindUnknown, ECLow, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload, tt.kind, tt.level)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
