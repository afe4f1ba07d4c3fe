package provider

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// EncodeImage reads the image at path and returns its media type together
// with the raw bytes. The media type is sniffed from the content and falls
// back to the file extension.
func EncodeImage(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpg", ".jpeg":
			mime = "image/jpeg"
		case ".gif":
			mime = "image/gif"
		case ".webp":
			mime = "image/webp"
		default:
			mime = "image/png"
		}
	}
	return mime, data, nil
}

// DataURL renders data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImagePart returns the message part carrying an image for the given
// provider: an image URL holding a data URL for OpenAI, a binary part for
// Anthropic.
func ImagePart(p Name, mime string, data []byte) llms.ContentPart {
	if p == Anthropic {
		return llms.BinaryPart(mime, data)
	}
	return llms.ImageURLPart(DataURL(mime, data))
}
