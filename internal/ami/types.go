// Where: internal/ami/types.go
// What: Replication request, region map, and image types.
// Why: Give the replicator and the EC2 adapter a shared vocabulary.
package ami

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest marks configuration errors detected before any API call.
	ErrInvalidRequest = errors.New("invalid replication request")
	// ErrImageNotAvailable is returned when a copied image never reaches "available".
	ErrImageNotAvailable = errors.New("image not available")
	// ErrImageNotFound is returned by adapters when an image id is unknown in a region.
	ErrImageNotFound = errors.New("image not found")
)

// Request describes one replication run.
type Request struct {
	SourceImageID      string
	SourceRegion       string
	DestinationRegions []string
	NamingVersion      string
	NamingFlavor       string
}

// Validate reports missing or empty inputs.
func (r Request) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"source image id", r.SourceImageID},
		{"source region", r.SourceRegion},
		{"naming version", r.NamingVersion},
		{"naming flavor", r.NamingFlavor},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field.name)
		}
	}
	hasRegion := false
	for _, region := range r.DestinationRegions {
		if strings.TrimSpace(region) != "" {
			hasRegion = true
			break
		}
	}
	if !hasRegion {
		return fmt.Errorf("%w: at least one destination region is required", ErrInvalidRequest)
	}
	return nil
}

// TargetRegions returns the destination regions to process, in input order,
// trimmed, de-duplicated, and without the source region.
func (r Request) TargetRegions() []string {
	source := strings.TrimSpace(r.SourceRegion)
	seen := map[string]struct{}{}
	out := make([]string, 0, len(r.DestinationRegions))
	for _, region := range r.DestinationRegions {
		region = strings.TrimSpace(region)
		if region == "" || region == source {
			continue
		}
		if _, ok := seen[region]; ok {
			continue
		}
		seen[region] = struct{}{}
		out = append(out, region)
	}
	return out
}

// ParseRegions splits a comma separated region list, dropping blanks.
func ParseRegions(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RegionEntry is one row of the region map.
type RegionEntry struct {
	Region  string `json:"-"`
	ImageID string `json:"AMI"`
}

// RegionMap maps a region code to its image entry.
type RegionMap map[string]RegionEntry

func (m RegionMap) set(region, imageID string) {
	m[region] = RegionEntry{Region: region, ImageID: imageID}
}

// ImageID returns the image id recorded for region.
func (m RegionMap) ImageID(region string) (string, bool) {
	entry, ok := m[region]
	return entry.ImageID, ok
}

func newRegionMap(req Request) RegionMap {
	m := RegionMap{}
	m.set(strings.TrimSpace(req.SourceRegion), strings.TrimSpace(req.SourceImageID))
	return m
}

// PendingCopy is a copy that has been started but is not yet published.
type PendingCopy struct {
	Region  string
	ImageID string
}

// ImageState mirrors the EC2 image lifecycle states the replicator cares about.
type ImageState string

const (
	ImageStatePending      ImageState = "pending"
	ImageStateAvailable    ImageState = "available"
	ImageStateFailed       ImageState = "failed"
	ImageStateInvalid      ImageState = "invalid"
	ImageStateDeregistered ImageState = "deregistered"
	ImageStateError        ImageState = "error"
)

func (s ImageState) terminalFailure() bool {
	switch s {
	case ImageStateFailed, ImageStateInvalid, ImageStateDeregistered, ImageStateError:
		return true
	default:
		return false
	}
}

// Image is the subset of an EC2 image the replicator reads.
type Image struct {
	ID          string
	Name        string
	Description string
	State       ImageState
	Public      bool
	SnapshotIDs []string
}

// CopyInput describes a cross-region image copy.
type CopyInput struct {
	SourceImageID string
	SourceRegion  string
	Name          string
	Description   string
}

// ImageAPI is the per-region image control plane used by the replicator.
type ImageAPI interface {
	ListOwnedImages(ctx context.Context) ([]Image, error)
	DescribeImage(ctx context.Context, imageID string) (Image, error)
	CopyImage(ctx context.Context, input CopyInput) (string, error)
	MakeImagePublic(ctx context.Context, imageID string) error
	MakeSnapshotPublic(ctx context.Context, snapshotID string) error
}

// ClientFactory hands out region-scoped image clients.
type ClientFactory interface {
	Images(ctx context.Context, region string) (ImageAPI, error)
	CallerAccount(ctx context.Context) (string, error)
}
