// Where: internal/infra/awsclient/ec2.go
// What: EC2 adapter implementing ami.ImageAPI.
// Why: Map replicator image operations to SDK calls and types.
package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/poruru/refarch-release/internal/ami"
)

const imageNotFoundCode = "InvalidAMIID.NotFound"

type ec2API interface {
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	CopyImage(ctx context.Context, params *ec2.CopyImageInput, optFns ...func(*ec2.Options)) (*ec2.CopyImageOutput, error)
	ModifyImageAttribute(ctx context.Context, params *ec2.ModifyImageAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyImageAttributeOutput, error)
	ModifySnapshotAttribute(ctx context.Context, params *ec2.ModifySnapshotAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifySnapshotAttributeOutput, error)
}

type imageClient struct {
	client ec2API
	region string
}

func (c imageClient) ListOwnedImages(ctx context.Context) ([]ami.Image, error) {
	if c.client == nil {
		return nil, fmt.Errorf("ec2 client is nil")
	}
	paginator := ec2.NewDescribeImagesPaginator(c.client, &ec2.DescribeImagesInput{
		Owners: []string{"self"},
	})
	var out []ami.Image
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, image := range page.Images {
			out = append(out, mapImage(image))
		}
	}
	return out, nil
}

func (c imageClient) DescribeImage(ctx context.Context, imageID string) (ami.Image, error) {
	if c.client == nil {
		return ami.Image{}, fmt.Errorf("ec2 client is nil")
	}
	resp, err := c.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: []string{imageID},
	})
	if err != nil {
		if isImageNotFound(err) {
			return ami.Image{}, fmt.Errorf("%w: %s in %s", ami.ErrImageNotFound, imageID, c.region)
		}
		return ami.Image{}, err
	}
	if len(resp.Images) == 0 {
		return ami.Image{}, fmt.Errorf("%w: %s in %s", ami.ErrImageNotFound, imageID, c.region)
	}
	return mapImage(resp.Images[0]), nil
}

func (c imageClient) CopyImage(ctx context.Context, input ami.CopyInput) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("ec2 client is nil")
	}
	resp, err := c.client.CopyImage(ctx, &ec2.CopyImageInput{
		Name:          aws.String(input.Name),
		Description:   aws.String(input.Description),
		SourceImageId: aws.String(input.SourceImageID),
		SourceRegion:  aws.String(input.SourceRegion),
	})
	if err != nil {
		return "", err
	}
	imageID := aws.ToString(resp.ImageId)
	if imageID == "" {
		return "", fmt.Errorf("copy image returned no image id")
	}
	return imageID, nil
}

func (c imageClient) MakeImagePublic(ctx context.Context, imageID string) error {
	if c.client == nil {
		return fmt.Errorf("ec2 client is nil")
	}
	_, err := c.client.ModifyImageAttribute(ctx, &ec2.ModifyImageAttributeInput{
		ImageId: aws.String(imageID),
		LaunchPermission: &types.LaunchPermissionModifications{
			Add: []types.LaunchPermission{{Group: types.PermissionGroupAll}},
		},
	})
	return err
}

func (c imageClient) MakeSnapshotPublic(ctx context.Context, snapshotID string) error {
	if c.client == nil {
		return fmt.Errorf("ec2 client is nil")
	}
	_, err := c.client.ModifySnapshotAttribute(ctx, &ec2.ModifySnapshotAttributeInput{
		SnapshotId: aws.String(snapshotID),
		CreateVolumePermission: &types.CreateVolumePermissionModifications{
			Add: []types.CreateVolumePermission{{Group: types.PermissionGroupAll}},
		},
	})
	return err
}

func mapImage(image types.Image) ami.Image {
	out := ami.Image{
		ID:          aws.ToString(image.ImageId),
		Name:        aws.ToString(image.Name),
		Description: aws.ToString(image.Description),
		State:       ami.ImageState(image.State),
		Public:      aws.ToBool(image.Public),
	}
	for _, mapping := range image.BlockDeviceMappings {
		if mapping.Ebs == nil {
			continue
		}
		if snapshotID := aws.ToString(mapping.Ebs.SnapshotId); snapshotID != "" {
			out.SnapshotIDs = append(out.SnapshotIDs, snapshotID)
		}
	}
	return out
}

func isImageNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == imageNotFoundCode
}
