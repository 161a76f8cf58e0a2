// Package preview produces the link-preview artefacts of a shared note: the
// Open Graph card image and the page metadata that points at it.
package preview

import (
	"context"

	"jotjot/internal/markup"
)

// Open Graph card dimensions.
const (
	Width  = 1200
	Height = 630
)

// CaptionLength is the maximum number of characters printed on the card.
const CaptionLength = 200

// Placeholder is the caption used when no content is supplied.
const Placeholder = "Jot it down..."

// Watermark is printed under the caption.
const Watermark = "Created with JotJot"

// Renderer draws the preview card for a note and returns it PNG-encoded.
type Renderer interface {
	Render(ctx context.Context, content string) ([]byte, error)
}

// Caption returns the text printed on the card for content: tags stripped,
// at most CaptionLength characters.
func Caption(content string) string {
	if content == "" {
		return Placeholder
	}
	return markup.PlainText(content, CaptionLength)
}
