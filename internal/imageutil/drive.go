// Package imageutil derives viewable URLs from Google-Drive-hosted file
// references left over from the legacy intake form.
package imageutil

import "regexp"

// Placeholder is served when a report has no image at all.
const Placeholder = "/placeholder.jpg"

// Drive share links embed the file id either as /d/<id>/ or ?id=<id>.
var driveIDPattern = regexp.MustCompile(`/d/(.+?)/|\?id=(.+?)$`)

func driveID(url string) string {
	m := driveIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// DirectURL converts a Drive share link into a directly viewable URL.
// Unrecognized URLs pass through unchanged; an absent URL yields the
// placeholder.
func DirectURL(url string) string {
	if url == "" {
		return Placeholder
	}
	if id := driveID(url); id != "" {
		return "https://drive.google.com/uc?export=view&id=" + id
	}
	return url
}

// PreviewURL converts a Drive share link into an embeddable preview URL.
// Unrecognized URLs pass through unchanged; an absent URL yields "".
func PreviewURL(url string) string {
	if url == "" {
		return ""
	}
	if id := driveID(url); id != "" {
		return "https://drive.google.com/file/d/" + id + "/preview"
	}
	return url
}
