// Where: internal/ami/marker.go
// What: Description marker and copy naming helpers.
// Why: The marker is parsed back on later runs to find existing copies.
package ami

import (
	"fmt"
	"strings"
	"time"
)

// CopyMarker returns the description tag written on every copied image.
// The format is read back by earlier and later releases and must not change.
func CopyMarker(sourceImageID, sourceRegion string) string {
	return fmt.Sprintf("[Copied %s from %s]", sourceImageID, sourceRegion)
}

// CopyName builds "{version}-{flavor}-{unix}".
func CopyName(version, flavor string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", version, flavor, now.Unix())
}

// findCopy returns the first image whose description contains marker.
// Several matches are not disambiguated.
func findCopy(images []Image, marker string) (Image, bool) {
	for _, image := range images {
		if strings.Contains(image.Description, marker) {
			return image, true
		}
	}
	return Image{}, false
}
