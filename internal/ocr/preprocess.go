package ocr

import (
	"os"

	"github.com/disintegration/imaging"
)

// Preprocess writes a cleaned-up copy of the image into cacheDir and returns
// its path together with the list of applied steps. Receipts photographed with
// phones tend to be low-contrast and skew-lit, so the pass is grayscale,
// contrast stretch, sharpen, then upscale when the strip is too small for
// tesseract to segment.
func Preprocess(path, cacheDir string, minWidth int) (string, []string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, err
	}

	steps := []string{"grayscale", "contrast", "sharpen"}
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 15)
	out = imaging.Sharpen(out, 0.7)
	if minWidth > 0 && out.Bounds().Dx() < minWidth {
		out = imaging.Resize(out, minWidth, 0, imaging.Lanczos)
		steps = append(steps, "resize")
	}

	tmp, err := os.CreateTemp(cacheDir, "ocr-*.png")
	if err != nil {
		return "", nil, err
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", nil, err
	}
	if err := imaging.Save(out, name); err != nil {
		removeArtifact(name)
		return "", nil, err
	}
	return name, steps, nil
}

func removeArtifact(path string) {
	_ = os.Remove(path)
}
