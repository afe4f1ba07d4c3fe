package tool

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// QRSize is the edge length in pixels of generated QR codes.
const QRSize = 512

type qrArgs struct {
	Data      string `json:"data"`
	Filename  string `json:"filename"`
	ImagePath string `json:"image_path"`
}

// NewQRCode returns generate_qr_code. The code is encoded with the highest
// error correction level so a logo can cover its centre. Output files are
// written under baseDir when it is set.
func NewQRCode(baseDir string) Tool {
	params := Object(map[string]any{
		"data":       String("Text or URL to encode."),
		"filename":   String("Name for the output PNG file (without extension)."),
		"image_path": String("Path to the image to be embedded in the centre of the QR code."),
	}, "data", "filename")

	return NewFunc("generate_qr_code", "Generate a QR code image given data and an image path.", params,
		func(ctx context.Context, args qrArgs) (string, error) {
			out := args.Filename + ".png"
			logo := ""
			if args.ImagePath != "" {
				logo = resolve(baseDir, args.ImagePath)
			}
			if err := WriteQRCode(resolve(baseDir, out), args.Data, logo); err != nil {
				return "", err
			}
			return fmt.Sprintf("QR code saved as %s containing: %s...", out, truncate(args.Data, 50)), nil
		})
}

// WriteQRCode renders data as a PNG QR code at path. When logoPath is not
// empty the image is scaled to a quarter of the code and drawn in its centre.
func WriteQRCode(path, data, logoPath string) error {
	q, err := qrcode.New(data, qrcode.Highest)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}
	q.BackgroundColor = color.White
	q.ForegroundColor = color.Black

	code := q.Image(QRSize)
	canvas := image.NewRGBA(code.Bounds())
	draw.Draw(canvas, canvas.Bounds(), code, code.Bounds().Min, draw.Src)

	if logoPath != "" {
		if err := embedLogo(canvas, logoPath); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, canvas); err != nil {
		f.Close()
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return f.Close()
}

func embedLogo(canvas *image.RGBA, logoPath string) error {
	f, err := os.Open(logoPath)
	if err != nil {
		return fmt.Errorf("failed to open logo: %w", err)
	}
	defer f.Close()

	logo, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode logo: %w", err)
	}

	b := canvas.Bounds()
	side := b.Dx() / 4
	lb := logo.Bounds()
	w, h := side, side
	if lb.Dx() > lb.Dy() {
		h = side * lb.Dy() / lb.Dx()
	} else if lb.Dy() > lb.Dx() {
		w = side * lb.Dx() / lb.Dy()
	}
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	dst := image.Rect(x0, y0, x0+w, y0+h)

	draw.CatmullRom.Scale(canvas, dst, logo, lb, draw.Over, nil)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
