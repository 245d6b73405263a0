// pkg/render/assets.go

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Image is an embedded picture and its gofpdf image type.
type Image struct {
	Data []byte
	Type string
}

// Assets are the static files a Renderer draws from. All of them are
// optional; without Font the core Helvetica font is used.
type Assets struct {
	Logo      *Image
	Stamp     *Image
	Signature *Image
	Font      []byte
	BoldFont  []byte
}

// LoadAssets reads the images named in profile and the given font files.
func LoadAssets(profile Profile, fontPath, boldFontPath string) (Assets, error) {
	var (
		a   Assets
		err error
	)
	if a.Logo, err = loadImage("logo", profile.Logo); err != nil {
		return Assets{}, err
	}
	if a.Stamp, err = loadImage("stamp", profile.Stamp); err != nil {
		return Assets{}, err
	}
	if a.Signature, err = loadImage("signature", profile.Signature); err != nil {
		return Assets{}, err
	}
	if fontPath != "" {
		if a.Font, err = os.ReadFile(fontPath); err != nil {
			return Assets{}, &RenderError{Op: "load font", Err: err}
		}
	}
	if boldFontPath != "" {
		if a.BoldFont, err = os.ReadFile(boldFontPath); err != nil {
			return Assets{}, &RenderError{Op: "load bold font", Err: err}
		}
	}
	return a, nil
}

func loadImage(name, path string) (*Image, error) {
	if path == "" {
		return nil, nil
	}
	typ, err := imageType(path)
	if err != nil {
		return nil, &RenderError{Op: "load " + name, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RenderError{Op: "load " + name, Err: err}
	}
	return &Image{Data: data, Type: typ}, nil
}

func imageType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG", nil
	case ".jpg", ".jpeg":
		return "JPG", nil
	case ".gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}
}
