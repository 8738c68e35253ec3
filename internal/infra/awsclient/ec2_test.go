// Where: internal/infra/awsclient/ec2_test.go
// What: Tests for the EC2 adapter mappings.
// Why: Ensure SDK requests and responses line up with replicator types.
package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/poruru/refarch-release/internal/ami"
)

type fakeEC2 struct {
	pages         []*ec2.DescribeImagesOutput
	describeCalls []*ec2.DescribeImagesInput
	describeErr   error
	copyInput     *ec2.CopyImageInput
	imageAttr     *ec2.ModifyImageAttributeInput
	snapshotAttr  *ec2.ModifySnapshotAttributeInput
}

func (f *fakeEC2) DescribeImages(_ context.Context, params *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.describeCalls = append(f.describeCalls, params)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	idx := len(f.describeCalls) - 1
	if idx >= len(f.pages) {
		return &ec2.DescribeImagesOutput{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakeEC2) CopyImage(_ context.Context, params *ec2.CopyImageInput, _ ...func(*ec2.Options)) (*ec2.CopyImageOutput, error) {
	f.copyInput = params
	return &ec2.CopyImageOutput{ImageId: aws.String("ami-new")}, nil
}

func (f *fakeEC2) ModifyImageAttribute(_ context.Context, params *ec2.ModifyImageAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyImageAttributeOutput, error) {
	f.imageAttr = params
	return &ec2.ModifyImageAttributeOutput{}, nil
}

func (f *fakeEC2) ModifySnapshotAttribute(_ context.Context, params *ec2.ModifySnapshotAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifySnapshotAttributeOutput, error) {
	f.snapshotAttr = params
	return &ec2.ModifySnapshotAttributeOutput{}, nil
}

func TestListOwnedImagesPaginatesAndMaps(t *testing.T) {
	fake := &fakeEC2{pages: []*ec2.DescribeImagesOutput{
		{
			Images: []types.Image{{
				ImageId:     aws.String("ami-1"),
				Description: aws.String("[Copied ami-0 from us-east-1]"),
				Public:      aws.Bool(true),
				State:       types.ImageStateAvailable,
				BlockDeviceMappings: []types.BlockDeviceMapping{
					{DeviceName: aws.String("/dev/sda1"), Ebs: &types.EbsBlockDevice{SnapshotId: aws.String("snap-1")}},
					{DeviceName: aws.String("/dev/sdb"), VirtualName: aws.String("ephemeral0")},
				},
			}},
			NextToken: aws.String("page-2"),
		},
		{
			Images: []types.Image{{ImageId: aws.String("ami-2")}},
		},
	}}
	client := imageClient{client: fake, region: "eu-west-1"}

	images, err := client.ListOwnedImages(context.Background())
	if err != nil {
		t.Fatalf("ListOwnedImages: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	first := images[0]
	if first.ID != "ami-1" || !first.Public || first.State != ami.ImageStateAvailable {
		t.Fatalf("unexpected mapping: %+v", first)
	}
	if len(first.SnapshotIDs) != 1 || first.SnapshotIDs[0] != "snap-1" {
		t.Fatalf("unexpected snapshots: %v", first.SnapshotIDs)
	}
	if images[1].Public {
		t.Fatalf("missing public flag must map to false")
	}
	if got := fake.describeCalls[0].Owners; len(got) != 1 || got[0] != "self" {
		t.Fatalf("expected owner filter self, got %v", got)
	}
	if aws.ToString(fake.describeCalls[1].NextToken) != "page-2" {
		t.Fatalf("expected second page request")
	}
}

func TestDescribeImageMapsNotFound(t *testing.T) {
	fake := &fakeEC2{describeErr: &smithy.GenericAPIError{Code: "InvalidAMIID.NotFound", Message: "missing"}}
	client := imageClient{client: fake, region: "eu-west-1"}

	_, err := client.DescribeImage(context.Background(), "ami-x")
	if !errors.Is(err, ami.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestDescribeImageEmptyResultIsNotFound(t *testing.T) {
	client := imageClient{client: &fakeEC2{}, region: "eu-west-1"}

	_, err := client.DescribeImage(context.Background(), "ami-x")
	if !errors.Is(err, ami.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestCopyImageSendsMarkerAndName(t *testing.T) {
	fake := &fakeEC2{}
	client := imageClient{client: fake, region: "eu-west-1"}

	id, err := client.CopyImage(context.Background(), ami.CopyInput{
		SourceImageID: "ami-0",
		SourceRegion:  "us-east-1",
		Name:          "R2024b-linux-1",
		Description:   "[Copied ami-0 from us-east-1]",
	})
	if err != nil {
		t.Fatalf("CopyImage: %v", err)
	}
	if id != "ami-new" {
		t.Fatalf("unexpected id: %s", id)
	}
	in := fake.copyInput
	if aws.ToString(in.Description) != "[Copied ami-0 from us-east-1]" ||
		aws.ToString(in.Name) != "R2024b-linux-1" ||
		aws.ToString(in.SourceImageId) != "ami-0" ||
		aws.ToString(in.SourceRegion) != "us-east-1" {
		t.Fatalf("unexpected copy input: %+v", in)
	}
}

func TestMakePublicGrantsGroupAll(t *testing.T) {
	fake := &fakeEC2{}
	client := imageClient{client: fake, region: "eu-west-1"}

	if err := client.MakeImagePublic(context.Background(), "ami-1"); err != nil {
		t.Fatalf("MakeImagePublic: %v", err)
	}
	if err := client.MakeSnapshotPublic(context.Background(), "snap-1"); err != nil {
		t.Fatalf("MakeSnapshotPublic: %v", err)
	}
	launch := fake.imageAttr.LaunchPermission.Add
	if len(launch) != 1 || launch[0].Group != types.PermissionGroupAll {
		t.Fatalf("unexpected launch permission: %+v", launch)
	}
	volume := fake.snapshotAttr.CreateVolumePermission.Add
	if len(volume) != 1 || volume[0].Group != types.PermissionGroupAll {
		t.Fatalf("unexpected volume permission: %+v", volume)
	}
	if aws.ToString(fake.snapshotAttr.SnapshotId) != "snap-1" {
		t.Fatalf("unexpected snapshot id")
	}
}

func TestNilClientReturnsError(t *testing.T) {
	client := imageClient{}
	if _, err := client.ListOwnedImages(context.Background()); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
