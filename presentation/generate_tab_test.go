package presentation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codestudio/domain/symbol"
)

func TestPrepareSavePath(t *testing.T) {
	dir := t.TempDir()

	// The save dialog creates an empty file before the extension is
	// normalized; the stray original must not be left behind.
	bare := filepath.Join(dir, "qr-code")
	if err := os.WriteFile(bare, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := prepareSavePath(bare); got != bare+".png" {
		t.Errorf("prepareSavePath(%q) = %q, want %q", bare, got, bare+".png")
	}
	if _, err := os.Stat(bare); !os.IsNotExist(err) {
		t.Errorf("empty dialog file still exists at %q", bare)
	}

	// A path that already has a writable extension passes through.
	png := filepath.Join(dir, "out.png")
	if got := prepareSavePath(png); got != png {
		t.Errorf("prepareSavePath(%q) = %q", png, got)
	}

	// Only empty files are removed; anything with content stays.
	full := filepath.Join(dir, "notes")
	if err := os.WriteFile(full, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := prepareSavePath(full); got != full+".png" {
		t.Errorf("prepareSavePath(%q) = %q", full, got)
	}
	if _, err := os.Stat(full); err != nil {
		t.Errorf("non-empty file removed: %v", err)
	}
}

func TestModuleScaleOptions(t *testing.T) {
	if got := moduleScaleOptions(10); !reflect.DeepEqual(got, []string{"5", "10", "15", "20"}) {
		t.Errorf("moduleScaleOptions(10) = %v", got)
	}
	if got := moduleScaleOptions(8); !reflect.DeepEqual(got, []string{"5", "8", "10", "15", "20"}) {
		t.Errorf("moduleScaleOptions(8) = %v", got)
	}
	if got := moduleScaleOptions(0); !reflect.DeepEqual(got, []string{"5", "10", "15", "20"}) {
		t.Errorf("moduleScaleOptions(0) = %v", got)
	}
}

func TestParseModuleScale(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"10", 10},
		{"5", 5},
		{"", 0},
		{"-3", 0},
		{"huge", 0},
	}

	for _, tt := range tests {
		if got := parseModuleScale(tt.in); got != tt.want {
			t.Errorf("parseModuleScale(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSuggestedFileName(t *testing.T) {
	tests := []struct {
		kindDisplay string
		want        string
	}{
		{"QR Code", "qr-code.png"},
		{"Code 128", "code128.png"},
		{"qr", "qr-code.png"},
		{"barcode", "code128.png"},
		{"something else", "qr-code.png"},
	}

	for _, tt := range tests {
		if got := suggestedFileName(tt.kindDisplay); got != tt.want {
			t.Errorf("suggestedFileName(%q) = %q, want %q", tt.kindDisplay, got, tt.want)
		}
	}
}

func TestGenerateSuccessMessage(t *testing.T) {
	if got := generateSuccessMessage("QR Code"); got != "QR Code generated successfully!" {
		t.Errorf("Unexpected QR message: %q", got)
	}
	if got := generateSuccessMessage("Code 128"); got != "Barcode generated successfully!" {
		t.Errorf("Unexpected barcode message: %q", got)
	}
}

func TestIsInputError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"empty payload", symbol.ErrEmptyPayload, true},
		{"not ascii", symbol.ErrNotASCII, true},
		{"too long", symbol.ErrPayloadTooLong, true},
		{"unknown kind", symbol.ErrUnknownKind, true},
		{"wrapped", fmt.Errorf("validate: %w", symbol.ErrEmptyPayload), true},
		{"render fault", errors.New("encoder exploded"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInputError(tt.err); got != tt.want {
				t.Errorf("isInputError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestReasonError(t *testing.T) {
	err := reasonError("Failed to save file.", nil)
	if err.Error() != "Failed to save file." {
		t.Errorf("Unexpected message: %q", err.Error())
	}

	err = reasonError("Failed to generate code:", errors.New("disk full"))
	want := "Failed to generate code:\ndisk full"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
