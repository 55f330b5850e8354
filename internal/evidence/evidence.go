// Package evidence prepares payment proof images and names the objects
// they are stored under.
package evidence

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	Folder       = "payment-screenshots"
	MaxBytes     = 10 << 20
	MaxDimension = 2048
)

// Object is a stored proof image.
type Object struct {
	Path string
	URL  string
}

// Extension returns the lower-case extension of an uploaded file name if
// it is an image format we accept.
func Extension(filename string) (string, error) {
	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return "", domain.Invalid("screenshot", "unsupported image type")
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")), nil
}

// Normalize checks that data decodes as an image and scales it down when
// either side exceeds MaxDimension. Images within bounds are kept as sent.
func Normalize(data []byte, ext string) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.Invalid("screenshot", "required")
	}
	if len(data) > MaxBytes {
		return nil, domain.Invalid("screenshot", fmt.Sprintf("must be at most %d bytes", MaxBytes))
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, domain.Invalid("screenshot", "unsupported image type")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.Invalid("screenshot", "not a readable image")
	}

	b := img.Bounds()
	if b.Dx() <= MaxDimension && b.Dy() <= MaxDimension {
		return data, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos), format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ObjectPath(bookingID uuid.UUID, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s_%d.%s", Folder, bookingID, at.UnixMilli(), ext)
}

// BookingID recovers the owning booking from an object path.
func BookingID(objectPath string) (uuid.UUID, error) {
	name := strings.TrimPrefix(objectPath, Folder+"/")
	if name == objectPath || strings.Contains(name, "/") {
		return uuid.Nil, domain.NotFound("evidence", objectPath)
	}
	i := strings.IndexByte(name, '_')
	if i < 0 {
		return uuid.Nil, domain.NotFound("evidence", objectPath)
	}
	id, err := uuid.Parse(name[:i])
	if err != nil {
		return uuid.Nil, domain.NotFound("evidence", objectPath)
	}
	return id, nil
}
