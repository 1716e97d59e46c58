// Package resources holds assets embedded into the binary.
package resources

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed icons/app_256.png
var iconData []byte

// AppIcon returns the application icon as a Fyne resource.
func AppIcon() fyne.Resource {
	return &fyne.StaticResource{
		StaticName:    "app_256.png",
		StaticContent: iconData,
	}
}
