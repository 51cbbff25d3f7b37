package gemini

import "photo-style-studio/internal/media"

type ImageRequest struct {
	Image  media.Image
	Prompt string
}

// Part is one content part of a model reply: text, inline bytes, or both empty.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

type Response struct {
	Parts []Part
}

// FirstImage returns the first part carrying inline image bytes. Later image
// parts are ignored.
func (r Response) FirstImage() (media.Image, bool) {
	for _, p := range r.Parts {
		if len(p.Data) > 0 {
			return media.Image{Data: p.Data, MIMEType: p.MIMEType}, true
		}
	}
	return media.Image{}, false
}
