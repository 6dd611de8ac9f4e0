package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

func PNG(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("export: nil image")
	}
	return png.Encode(w, img)
}

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := PNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
