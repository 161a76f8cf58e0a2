package preview

import (
	"net/url"
	"strings"

	"jotjot/internal/markup"
)

const (
	descriptionLength = 160
	titleLength       = 60
	siteName          = "JotJot"
)

// Metadata is the document head of a shared page: title, description and the
// Open Graph / Twitter card fields.
type Metadata struct {
	Title       string
	Description string
	OGTitle     string
	ImageURL    string
	ImageWidth  int
	ImageHeight int
	ImageAlt    string
	TwitterCard string
}

// HasImage reports whether the metadata carries a preview card.
func (m Metadata) HasImage() bool {
	return m.ImageURL != ""
}

// DefaultMetadata describes the product when a share could not be loaded.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:       "JotJot - Beautiful writing, beautifully shared",
		Description: "A minimalist rich text editor with beautiful sharing.",
	}
}

// NotFoundMetadata describes a missing or expired share.
func NotFoundMetadata() Metadata {
	return Metadata{
		Title:       "JotJot - Share not found",
		Description: "This shared note could not be found.",
	}
}

// ImageURL returns the absolute URL of the preview card for content.
func ImageURL(baseURL, content string) string {
	return strings.TrimSuffix(baseURL, "/") + "/api/og?content=" + url.QueryEscape(content)
}

// MetadataFor derives the page metadata of a shared note.
func MetadataFor(baseURL, content string) Metadata {
	plain := markup.PlainText(content, descriptionLength)
	short := markup.Truncate(plain, titleLength) + "..."
	image := ImageURL(baseURL, content)

	return Metadata{
		Title:       short + " | " + siteName,
		Description: plain,
		OGTitle:     short,
		ImageURL:    image,
		ImageWidth:  Width,
		ImageHeight: Height,
		ImageAlt:    "Shared note from " + siteName,
		TwitterCard: "summary_large_image",
	}
}
