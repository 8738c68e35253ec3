// Where: internal/ami/replicator.go
// What: Cross-region image replication workflow.
// Why: Ensure a public copy of the release image exists in every target region.
package ami

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poruru/refarch-release/internal/infra/ui"
)

// Replicator copies an image into destination regions and publishes the copies.
// Regions are processed one after another; there is no retry of failed calls.
type Replicator struct {
	Clients ClientFactory
	UI      ui.UserInterface
	Wait    WaitConfig
	Now     func() time.Time
	Sleep   SleepFunc
}

// Replicate runs discovery/copy for every destination region, then waits for
// and publishes new copies. The first availability failure aborts the run and
// no map is returned.
func (r *Replicator) Replicate(ctx context.Context, req Request) (RegionMap, error) {
	if r == nil {
		return nil, fmt.Errorf("replicator is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if r.Clients == nil {
		return nil, fmt.Errorf("client factory not configured")
	}
	out := r.ui()

	if account, err := r.Clients.CallerAccount(ctx); err != nil {
		out.Warn(fmt.Sprintf("could not resolve caller account: %v", err))
	} else {
		out.Info(fmt.Sprintf("Using account %s", account))
	}

	regionMap := newRegionMap(req)
	var pending []PendingCopy

	for _, region := range req.TargetRegions() {
		out.Info(fmt.Sprintf("Processing region: %s...", region))
		imageID, copied, err := r.ensureCopy(ctx, req, region)
		if err != nil {
			return nil, err
		}
		if copied {
			pending = append(pending, PendingCopy{Region: region, ImageID: imageID})
		}
		regionMap.set(region, imageID)
	}

	if err := r.publishPending(ctx, pending); err != nil {
		return nil, err
	}
	return regionMap, nil
}

// ensureCopy finds or starts the copy for one region. copied reports whether
// a new copy was started and still needs publishing.
func (r *Replicator) ensureCopy(ctx context.Context, req Request, region string) (string, bool, error) {
	out := r.ui()
	client, err := r.Clients.Images(ctx, region)
	if err != nil {
		return "", false, fmt.Errorf("create image client for %s: %w", region, err)
	}

	images, err := client.ListOwnedImages(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list images in %s: %w", region, err)
	}

	sourceID := strings.TrimSpace(req.SourceImageID)
	sourceRegion := strings.TrimSpace(req.SourceRegion)
	marker := CopyMarker(sourceID, sourceRegion)

	if existing, ok := findCopy(images, marker); ok {
		label := existing.ID
		if name := strings.TrimSpace(existing.Name); name != "" {
			label = fmt.Sprintf("%s (%s)", existing.ID, name)
		}
		out.Info(fmt.Sprintf("Found existing copy in %s: %s", region, label))
		if !existing.Public {
			out.Info(fmt.Sprintf("Making existing AMI %s public...", existing.ID))
			if err := client.MakeImagePublic(ctx, existing.ID); err != nil {
				return "", false, fmt.Errorf("make %s public in %s: %w", existing.ID, region, err)
			}
		}
		return existing.ID, false, nil
	}

	out.Info(fmt.Sprintf("Copying %s to %s...", sourceID, region))
	imageID, err := client.CopyImage(ctx, CopyInput{
		SourceImageID: sourceID,
		SourceRegion:  sourceRegion,
		Name:          CopyName(req.NamingVersion, req.NamingFlavor, r.now()),
		Description:   marker,
	})
	if err != nil {
		return "", false, fmt.Errorf("copy %s to %s: %w", sourceID, region, err)
	}
	return imageID, true, nil
}

func (r *Replicator) publishPending(ctx context.Context, pending []PendingCopy) error {
	if len(pending) == 0 {
		return nil
	}
	out := r.ui()
	regions := make([]string, 0, len(pending))
	for _, p := range pending {
		regions = append(regions, p.Region)
	}
	out.Info(fmt.Sprintf("Waiting for AMIs to become available in: %s", strings.Join(regions, ", ")))

	for _, p := range pending {
		if err := r.publishCopy(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Replicator) publishCopy(ctx context.Context, p PendingCopy) error {
	out := r.ui()
	client, err := r.Clients.Images(ctx, p.Region)
	if err != nil {
		return fmt.Errorf("create image client for %s: %w", p.Region, err)
	}

	out.Info(fmt.Sprintf("Waiting for %s in %s...", p.ImageID, p.Region))
	if err := waitAvailable(ctx, client, p.ImageID, r.Wait, r.Sleep); err != nil {
		return fmt.Errorf("region %s: %w", p.Region, err)
	}

	out.Info(fmt.Sprintf("AMI %s is available. Setting permissions...", p.ImageID))
	if err := client.MakeImagePublic(ctx, p.ImageID); err != nil {
		return fmt.Errorf("make %s public in %s: %w", p.ImageID, p.Region, err)
	}

	image, err := client.DescribeImage(ctx, p.ImageID)
	if err != nil {
		return fmt.Errorf("describe %s in %s: %w", p.ImageID, p.Region, err)
	}
	for _, snapshotID := range image.SnapshotIDs {
		if err := client.MakeSnapshotPublic(ctx, snapshotID); err != nil {
			return fmt.Errorf("make snapshot %s public in %s: %w", snapshotID, p.Region, err)
		}
	}
	out.Success(fmt.Sprintf("Published %s in %s (%d snapshots)", p.ImageID, p.Region, len(image.SnapshotIDs)))
	return nil
}

func (r *Replicator) ui() ui.UserInterface {
	if r.UI == nil {
		return ui.Discard()
	}
	return r.UI
}

func (r *Replicator) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Simulate fabricates "test-<region>" ids for every destination region
// without contacting any external system.
func Simulate(req Request) RegionMap {
	regionMap := newRegionMap(req)
	for _, region := range req.TargetRegions() {
		regionMap.set(region, "test-"+region)
	}
	return regionMap
}
