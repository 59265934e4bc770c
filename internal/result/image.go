package result

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// ErrNotInline reports an image URI that is not a data: URI and must be fetched
// by the client itself.
var ErrNotInline = errors.New("result: image is not an inline data URI")

// Image is a decoded inline image.
type Image struct {
	ContentType string
	Data        []byte
}

// DecodeImage decodes a data: URI produced by the generator.
func DecodeImage(uri string) (Image, error) {
	if !strings.HasPrefix(uri, "data:") {
		return Image{}, ErrNotInline
	}
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	return Image{ContentType: du.MediaType.ContentType(), Data: du.Data}, nil
}

// ContentDisposition is the attachment header for a download.
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", DownloadFilename)
}
