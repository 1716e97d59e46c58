// Package symbol defines the supported code symbologies and payload rules.
package symbol

import (
	"errors"
	"strings"
)

// Common errors for payload validation.
var (
	ErrEmptyPayload   = errors.New("payload is empty")
	ErrNotASCII       = errors.New("payload contains non-ASCII characters")
	ErrPayloadTooLong = errors.New("payload exceeds symbol capacity")
	ErrUnknownKind    = errors.New("unknown symbology")
)

// Kind identifies a code symbology this application can render.
type Kind int

const (
	// KindUnknown is the zero value; never valid for rendering.
	KindUnknown Kind = iota
	// KindQR is a 2D matrix code with built-in error correction.
	KindQR
	// KindCode128 is a 1D barcode encoding the full ASCII range.
	KindCode128
)

// String returns the canonical name used in commands and config files.
func (k Kind) String() string {
	switch k {
	case KindQR:
		return "qr"
	case KindCode128:
		return "code128"
	default:
		return "unknown"
	}
}

// DisplayName returns the human-readable symbology name.
func (k Kind) DisplayName() string {
	switch k {
	case KindQR:
		return "QR Code"
	case KindCode128:
		return "Code 128"
	default:
		return "Unknown"
	}
}

// ParseKind resolves a canonical or display name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "qr", "qr code", "qrcode":
		return KindQR, nil
	case "code128", "code 128", "barcode":
		return KindCode128, nil
	default:
		return KindUnknown, ErrUnknownKind
	}
}

// Kinds returns all renderable symbologies in display order.
func Kinds() []Kind {
	return []Kind{KindQR, KindCode128}
}

// ECLevel selects the QR error correction level. Higher levels survive more
// damage at the cost of payload capacity. Code128 ignores it.
type ECLevel int

const (
	// ECLow recovers from roughly 7% damage.
	ECLow ECLevel = iota
	// ECMedium recovers from roughly 15% damage.
	ECMedium
	// ECQuartile recovers from roughly 25% damage.
	ECQuartile
	// ECHigh recovers from roughly 30% damage.
	ECHigh
)

// String returns the canonical level name.
func (l ECLevel) String() string {
	switch l {
	case ECLow:
		return "low"
	case ECMedium:
		return "medium"
	case ECQuartile:
		return "quartile"
	case ECHigh:
		return "high"
	default:
		return "unknown"
	}
}

// DisplayName returns the level name shown in the UI.
func (l ECLevel) DisplayName() string {
	switch l {
	case ECLow:
		return "Low (7%)"
	case ECMedium:
		return "Medium (15%)"
	case ECQuartile:
		return "Quartile (25%)"
	case ECHigh:
		return "High (30%)"
	default:
		return "Unknown"
	}
}

// ParseECLevel resolves a canonical or display name to an ECLevel.
// An empty name resolves to ECLow, the application default.
func ParseECLevel(name string) (ECLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "low", "l", "low (7%)":
		return ECLow, nil
	case "medium", "m", "medium (15%)":
		return ECMedium, nil
	case "quartile", "q", "quartile (25%)":
		return ECQuartile, nil
	case "high", "h", "high (30%)":
		return ECHigh, nil
	default:
		return ECLow, errors.New("unknown error correction level")
	}
}

// ECLevels returns all levels in ascending robustness order.
func ECLevels() []ECLevel {
	return []ECLevel{ECLow, ECMedium, ECQuartile, ECHigh}
}

// qrCapacity is the maximum binary payload in bytes for a version 40 QR
// symbol at each error correction level.
var qrCapacity = map[ECLevel]int{
	ECLow:      2953,
	ECMedium:   2331,
	ECQuartile: 1663,
	ECHigh:     1273,
}

// MaxPayload returns the byte capacity of a QR symbol at the given level.
func MaxPayload(level ECLevel) int {
	if c, ok := qrCapacity[level]; ok {
		return c
	}
	return qrCapacity[ECLow]
}

// Validate checks whether the payload can be rendered with the given
// symbology. It reports the first violated rule.
func Validate(payload string, kind Kind, level ECLevel) error {
	if strings.TrimSpace(payload) == "" {
		return ErrEmptyPayload
	}

	switch kind {
	case KindQR:
		if len(payload) > MaxPayload(level) {
			return ErrPayloadTooLong
		}
	case KindCode128:
		for _, r := range payload {
			if r > 127 {
				return ErrNotASCII
			}
		}
	default:
		return ErrUnknownKind
	}

	return nil
}
