// Package ocr defines the image-text capability used by the extraction
// engine's OCR strategy. No OCR engine ships with this module; the
// Unavailable reader makes the feature degrade cleanly, and deployments with
// an engine plug in their own ImageTextReader.
package ocr

import (
	"context"
	"fmt"

	"contact-scraper/pkg/utils"
)

// ImageTextReader extracts visible text from an image URL.
type ImageTextReader interface {
	// Text downloads and reads the image at imageURL. Implementations
	// return utils.ErrFeatureUnavailable when no engine backs them.
	Text(ctx context.Context, imageURL string) (string, error)

	// Available reports whether the reader can actually produce text.
	Available() bool
}

// Unavailable is the null-object reader used when OCR is requested but no
// engine is wired in. The extraction engine logs one warning and skips the
// OCR strategy.
type Unavailable struct{}

// NewUnavailable returns the null-object reader.
func NewUnavailable() *Unavailable { return &Unavailable{} }

// Text implements ImageTextReader.
func (u *Unavailable) Text(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: no OCR engine configured", utils.ErrFeatureUnavailable)
}

// Available implements ImageTextReader.
func (u *Unavailable) Available() bool { return false }
