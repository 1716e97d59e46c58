// Package imageio loads, saves and resizes the image files the application
// works with. Decoding is delegated to the standard codecs plus x/image for
// BMP; thumbnails use Lanczos resampling.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// SupportedExtensions lists the file extensions accepted for loading.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// SaveExtensions lists the file extensions accepted for saving.
var SaveExtensions = []string{".png", ".jpg", ".jpeg"}

// maxPixels rejects absurdly large frames before decoding goes further.
const maxPixels = 64 << 20

// jpegQuality is used for all JPEG writes.
const jpegQuality = 95

// FileError describes a failed image file operation.
type FileError struct {
	Op   string // "load", "decode" or "save"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Metadata captures lightweight file and pixel information.
type Metadata struct {
	Path     string
	Format   string
	Width    int
	Height   int
	FileSize int64
}

// IsSupported reports whether the path has a loadable image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Load opens and decodes an image file, returning the image and metadata.
func Load(path string) (image.Image, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, &FileError{Op: "load", Path: path, Err: errors.New("empty path")}
	}
	if !IsSupported(path) {
		return nil, Metadata{}, &FileError{
			Op:   "load",
			Path: path,
			Err:  fmt.Errorf("unsupported format %q", filepath.Ext(path)),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Metadata{}, &FileError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, Metadata{}, &FileError{Op: "load", Path: path, Err: err}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, Metadata{}, &FileError{Op: "decode", Path: path, Err: err}
	}

	b := img.Bounds()
	if b.Dx()*b.Dy() > maxPixels {
		return nil, Metadata{}, &FileError{
			Op:   "decode",
			Path: path,
			Err:  fmt.Errorf("image too large: %dx%d", b.Dx(), b.Dy()),
		}
	}

	meta := Metadata{
		Path:     path,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		FileSize: fi.Size(),
	}

	return img, meta, nil
}

// EnsureSaveExtension returns the path with a writable image extension,
// appending ".png" when the given one is missing or unsupported.
func EnsureSaveExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SaveExtensions {
		if ext == s {
			return path
		}
	}
	return path + ".png"
}

// Save encodes the image to the path. The format follows the extension:
// PNG for ".png", JPEG for ".jpg"/".jpeg"; anything else is an error.
func Save(path string, img image.Image) error {
	if img == nil {
		return &FileError{Op: "save", Path: path, Err: errors.New("nil image")}
	}

	f, err := os.Create(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}

	if err != nil {
		f.Close()
		os.Remove(path)
		return &FileError{Op: "save", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Thumbnail scales the image down to fit within maxWidth x maxHeight,
// preserving the aspect ratio. Images already inside the box are returned
// unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	if img == nil {
		return nil
	}

	b := img.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}

	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}
