package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMediaType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		wantMIME string
		wantCat  Category
	}{
		{"png by extension", "", "a.png", "image/png", CategoryImage},
		{"jpeg by extension", "", "photo.jpg", "image/jpeg", CategoryImage},
		{"gif by extension", "", "anim.gif", "image/gif", CategoryGIF},
		{"mp4 by extension", "", "clip.mp4", "video/mp4", CategoryVideo},
		{"quicktime declared", "video/quicktime", "", "video/quicktime", CategoryVideo},
		{"declared type wins over extension", "image/webp", "a.mp4", "image/webp", CategoryImage},
		{"unknown extension falls back", "", "a.unknownext", octetStream, CategoryImage},
		{"no inputs", "", "", octetStream, CategoryImage},
		{"unrecognised declared type defaults to image", "application/pdf", "doc.pdf", "application/pdf", CategoryImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, cat := ResolveMediaType(tt.declared, tt.filename)
			assert.Equal(t, tt.wantMIME, mimeType)
			assert.Equal(t, tt.wantCat, cat)
		})
	}
}

func TestDescribe(t *testing.T) {
	p := Bytes{Data: []byte("hello"), DeclaredType: "image/png"}
	d, err := describe(p)
	assert.NoError(t, err)
	assert.Equal(t, MediaDescriptor{MIME: "image/png", Category: CategoryImage, TotalBytes: 5}, d)
}
