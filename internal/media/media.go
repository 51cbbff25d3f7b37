package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var (
	ErrEmpty      = errors.New("image is empty")
	ErrNotImage   = errors.New("file is not an image")
	ErrBadDataURI = errors.New("invalid data uri")
)

const fallbackMIME = "image/jpeg"

// Image is a source or generated picture held in memory.
type Image struct {
	Data     []byte
	MIMEType string
}

func (i Image) Empty() bool {
	return len(i.Data) == 0
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i Image) DataURI() string {
	return DataURI(i.MIMEType, i.Data)
}

// Clone copies the bytes so later writes by the owner do not leak in.
func (i Image) Clone() Image {
	return Image{Data: append([]byte(nil), i.Data...), MIMEType: i.MIMEType}
}

// FromPicker wraps a file chosen through a picker. No type check is done.
func FromPicker(header string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}
	return Image{Data: data, MIMEType: DetectMIME(header, data)}, nil
}

// FromDrop wraps a dropped file; only image/* types are accepted.
func FromDrop(header string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}
	mimeType := sniff(header, data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}
	return Image{Data: data, MIMEType: mimeType}, nil
}

// DetectMIME trusts a concrete header first, then sniffs, then falls back to
// image/jpeg.
func DetectMIME(header string, data []byte) string {
	mimeType := sniff(header, data)
	if mimeType == "" || mimeType == "application/octet-stream" {
		return fallbackMIME
	}
	return mimeType
}

func sniff(header string, data []byte) string {
	mimeType := stripParams(header)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = stripParams(http.DetectContentType(data))
	}
	return mimeType
}

func stripParams(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return strings.ToLower(value)
}

func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = fallbackMIME
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

var dataURIPrefix = regexp.MustCompile(`^data:([^;,]*)(;[^,]*)?,`)

// ParseDataURI decodes a base64 data URI. A bare base64 payload is accepted
// and typed as image/jpeg.
func ParseDataURI(value string) (Image, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Image{}, ErrEmpty
	}

	mimeType := fallbackMIME
	payload := value
	if strings.HasPrefix(value, "data:") {
		m := dataURIPrefix.FindStringSubmatch(value)
		if m == nil {
			return Image{}, ErrBadDataURI
		}
		if !strings.Contains(m[2], "base64") {
			return Image{}, fmt.Errorf("%w: not base64", ErrBadDataURI)
		}
		if strings.TrimSpace(m[1]) != "" {
			mimeType = strings.TrimSpace(m[1])
		}
		payload = value[len(m[0]):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return Image{Data: data, MIMEType: mimeType}, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename derives a download name from a pose title.
func Filename(title string) string {
	return whitespace.ReplaceAllString(title, "_") + ".png"
}
