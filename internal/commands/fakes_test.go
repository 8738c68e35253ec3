// Where: internal/commands/fakes_test.go
// What: Fake AWS clients and helpers for command tests.
// Why: Run commands end to end without a cloud account.
package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poruru/refarch-release/internal/ami"
	"github.com/poruru/refarch-release/internal/infra/awsclient"
	"github.com/poruru/refarch-release/internal/release"
)

type fakeImages struct {
	region string
	owned  []ami.Image
	state  ami.ImageState
	copies int
	public []string
}

func (f *fakeImages) ListOwnedImages(context.Context) ([]ami.Image, error) {
	return f.owned, nil
}

func (f *fakeImages) DescribeImage(_ context.Context, id string) (ami.Image, error) {
	state := f.state
	if state == "" {
		state = ami.ImageStateAvailable
	}
	return ami.Image{ID: id, State: state}, nil
}

func (f *fakeImages) CopyImage(context.Context, ami.CopyInput) (string, error) {
	f.copies++
	return "ami-" + f.region, nil
}

func (f *fakeImages) MakeImagePublic(_ context.Context, id string) error {
	f.public = append(f.public, id)
	return nil
}

func (f *fakeImages) MakeSnapshotPublic(context.Context, string) error {
	return nil
}

type fakeFactory struct {
	regions map[string]*fakeImages
	opts    awsclient.Options
}

func (f *fakeFactory) Images(_ context.Context, region string) (ami.ImageAPI, error) {
	client, ok := f.regions[region]
	if !ok {
		client = &fakeImages{region: region}
		f.regions[region] = client
	}
	return client, nil
}

func (f *fakeFactory) CallerAccount(context.Context) (string, error) {
	return "123456789012", nil
}

type fakeUploader struct {
	keys []string
	opts awsclient.Options
}

func (f *fakeUploader) UploadObject(_ context.Context, bucket, key string, _ []byte) error {
	f.keys = append(f.keys, bucket+"/"+key)
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func testDeps(factory *fakeFactory, uploader *fakeUploader) Dependencies {
	return Dependencies{
		NewClientFactory: func(_ context.Context, opts awsclient.Options) (ami.ClientFactory, error) {
			if factory == nil {
				return nil, errors.New("no factory")
			}
			factory.opts = opts
			return factory, nil
		},
		NewUploader: func(_ context.Context, opts awsclient.Options) (release.Uploader, error) {
			if uploader == nil {
				return nil, errors.New("no uploader")
			}
			uploader.opts = opts
			return uploader, nil
		},
		Sleep: noSleep,
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
