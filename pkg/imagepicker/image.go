package imagepicker

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/go-drift/imagepicker/pkg/platform"
)

// Image is a picked image as handed over by the OS. Either Path or Data is set.
type Image struct {
	Path     string
	MimeType string
	Width    int
	Height   int
	Size     int64
	Data     []byte
}

// fillHeader reads format and dimensions from Data when native left them out.
// Undecodable data is kept as is.
func (img *Image) fillHeader() {
	if len(img.Data) == 0 || (img.Width > 0 && img.Height > 0 && img.MimeType != "") {
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return
	}
	if img.Width == 0 || img.Height == 0 {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	if img.MimeType == "" {
		img.MimeType = "image/" + format
	}
}

func imageFromMedia(m platform.PickedMedia) Image {
	img := Image{
		Path:     m.Path,
		MimeType: m.MimeType,
		Width:    m.Width,
		Height:   m.Height,
		Size:     m.Size,
		Data:     m.Data,
	}
	img.fillHeader()
	return img
}

// extractImage returns the edited image when allowEditing is set and the
// original otherwise.
func extractImage(info Info, allowEditing bool) (Image, error) {
	key := InfoOriginalImage
	if allowEditing {
		key = InfoEditedImage
	}
	switch v := info[key].(type) {
	case Image:
		v.fillHeader()
		return v, nil
	case *Image:
		if v != nil {
			img := *v
			img.fillHeader()
			return img, nil
		}
	case map[string]any:
		if m, err := platform.ParsePickedMedia(v); err == nil {
			return imageFromMedia(m), nil
		}
	}
	return Image{}, &CastError{Key: key, Got: info[key]}
}
