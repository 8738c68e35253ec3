// Where: internal/ami/fakes_test.go
// What: In-memory image control plane for replicator tests.
// Why: Exercise the workflow without touching a cloud account.
package ami

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type fakeImages struct {
	region       string
	owned        []Image
	listErr      error
	copies       []CopyInput
	copyErr      error
	nextID       string
	states       []ImageState
	describeErr  error
	describes    int
	snapshots    []string
	publicImages []string
	publicSnaps  []string
}

func (f *fakeImages) ListOwnedImages(_ context.Context) ([]Image, error) {
	return f.owned, f.listErr
}

func (f *fakeImages) DescribeImage(_ context.Context, imageID string) (Image, error) {
	f.describes++
	if f.describeErr != nil {
		return Image{}, f.describeErr
	}
	state := ImageStateAvailable
	if len(f.states) > 0 {
		state = f.states[0]
		if len(f.states) > 1 {
			f.states = f.states[1:]
		}
	}
	return Image{ID: imageID, State: state, SnapshotIDs: f.snapshots}, nil
}

func (f *fakeImages) CopyImage(_ context.Context, input CopyInput) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	f.copies = append(f.copies, input)
	if f.nextID != "" {
		return f.nextID, nil
	}
	return "ami-" + f.region, nil
}

func (f *fakeImages) MakeImagePublic(_ context.Context, imageID string) error {
	f.publicImages = append(f.publicImages, imageID)
	return nil
}

func (f *fakeImages) MakeSnapshotPublic(_ context.Context, snapshotID string) error {
	f.publicSnaps = append(f.publicSnaps, snapshotID)
	return nil
}

type fakeFactory struct {
	clients    map[string]*fakeImages
	requested  []string
	accountErr error
}

func newFakeFactory(regions ...string) *fakeFactory {
	f := &fakeFactory{clients: map[string]*fakeImages{}}
	for _, region := range regions {
		f.clients[region] = &fakeImages{region: region}
	}
	return f
}

func (f *fakeFactory) Images(_ context.Context, region string) (ImageAPI, error) {
	f.requested = append(f.requested, region)
	client, ok := f.clients[region]
	if !ok {
		return nil, fmt.Errorf("unexpected region %s", region)
	}
	return client, nil
}

func (f *fakeFactory) CallerAccount(_ context.Context) (string, error) {
	if f.accountErr != nil {
		return "", f.accountErr
	}
	return "123456789012", nil
}

func noSleep(_ context.Context, _ time.Duration) error {
	return nil
}

var errBoom = errors.New("boom")
