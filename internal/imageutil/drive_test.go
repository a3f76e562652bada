package imageutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectURL(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{
			"share link with /d/ segment",
			"https://drive.google.com/file/d/1AbC-xyz/view?usp=sharing",
			"https://drive.google.com/uc?export=view&id=1AbC-xyz",
		},
		{
			"open link with id query",
			"https://drive.google.com/open?id=1AbC-xyz",
			"https://drive.google.com/uc?export=view&id=1AbC-xyz",
		},
		{
			"unrecognized url passes through",
			"https://example.com/photo.jpg",
			"https://example.com/photo.jpg",
		},
		{
			"inline payload passes through",
			"data:image/jpeg;base64,AAAA",
			"data:image/jpeg;base64,AAAA",
		},
		{"absent url yields placeholder", "", Placeholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DirectURL(tc.in))
		})
	}
}

func TestPreviewURL(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{
			"share link with /d/ segment",
			"https://drive.google.com/file/d/1AbC-xyz/view?usp=sharing",
			"https://drive.google.com/file/d/1AbC-xyz/preview",
		},
		{
			"open link with id query",
			"https://drive.google.com/open?id=1AbC-xyz",
			"https://drive.google.com/file/d/1AbC-xyz/preview",
		},
		{
			"unrecognized url passes through",
			"https://example.com/photo.jpg",
			"https://example.com/photo.jpg",
		},
		{"absent url yields empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PreviewURL(tc.in))
		})
	}
}

func TestPreviewAndDirectShareSameID(t *testing.T) {
	url := "https://drive.google.com/file/d/1AbC-xyz/view"
	assert.Contains(t, DirectURL(url), "1AbC-xyz")
	assert.Contains(t, PreviewURL(url), "1AbC-xyz")
}
