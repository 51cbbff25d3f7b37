package batch

import (
	"fmt"

	"photo-style-studio/internal/media"
)

type GeneratedImage struct {
	ID          string      `json:"id"`
	PoseID      string      `json:"poseId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"imageUrl"`
	Image       media.Image `json:"-"`
}

// Filename is the download name for the image.
func (g GeneratedImage) Filename() string {
	return media.Filename(g.Title)
}

// uniqueID is stable within one run only: queue indexes are distinct.
func uniqueID(poseID string, queueIndex int) string {
	return fmt.Sprintf("%s-%d", poseID, queueIndex)
}
