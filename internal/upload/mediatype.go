package upload

// In this file: MIME type resolution and media category classification.

import (
	"mime"
	"path/filepath"
	"strings"
)

// Category is the remote service's classification of media kind, used by the
// service to select processing behaviour (image pipelines vs. video
// transcoding).
type Category string

const (
	CategoryImage Category = "tweet_image"
	CategoryGIF   Category = "tweet_gif"
	CategoryVideo Category = "tweet_video"
)

// octetStream is the fallback MIME type when inference fails.
const octetStream = "application/octet-stream"

// categories maps MIME types to upload categories.  Anything not listed is
// treated as an image, which matches the remote service's default handling.
var categories = map[string]Category{
	"image/jpeg":      CategoryImage,
	"image/png":       CategoryImage,
	"image/webp":      CategoryImage,
	"image/gif":       CategoryGIF,
	"video/mp4":       CategoryVideo,
	"video/quicktime": CategoryVideo,
}

// extensions maps file extensions of the supported media formats to MIME
// types.  The stdlib table is consulted for anything else; video extensions
// are listed here because the stdlib built-in table does not know them and
// the OS table is not guaranteed to be present.
var extensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// MediaDescriptor describes a payload to the remote upload-creation endpoint.
type MediaDescriptor struct {
	MIME       string
	Category   Category
	TotalBytes int64
}

// ResolveMediaType determines the MIME type and upload category for a
// payload.  declaredType, when non-empty, is used verbatim; otherwise the
// type is inferred from the filename extension, falling back to
// application/octet-stream.  It is a pure function with no failure path.
func ResolveMediaType(declaredType, filename string) (string, Category) {
	mimeType := declaredType
	if mimeType == "" && filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		mimeType = extensions[ext]
		if mimeType == "" {
			mimeType, _, _ = mime.ParseMediaType(mime.TypeByExtension(ext))
		}
	}
	if mimeType == "" {
		mimeType = octetStream
	}
	cat, ok := categories[mimeType]
	if !ok {
		cat = CategoryImage
	}
	return mimeType, cat
}

// describe resolves the full media descriptor for a payload.
func describe(p Payload) (MediaDescriptor, error) {
	size, err := p.Size()
	if err != nil {
		return MediaDescriptor{}, err
	}
	mimeType, cat := ResolveMediaType(p.ContentType(), p.Filename())
	return MediaDescriptor{MIME: mimeType, Category: cat, TotalBytes: size}, nil
}
