// Where: internal/infra/awsclient/factory.go
// What: AWS client factory for EC2, STS, and S3.
// Why: Build region-scoped clients from one explicitly passed configuration.
package awsclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/poruru/refarch-release/internal/ami"
)

const defaultAWSRegion = "us-east-1"

// Options carries credentials and session settings. Empty fields fall back to
// the SDK default chain (environment, shared config, instance role).
type Options struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Factory hands out clients that share one aws.Config.
type Factory struct {
	cfg     aws.Config
	images  map[string]ami.ImageAPI
	newEC2  func(cfg aws.Config, region string) ec2API
	newSTS  func(cfg aws.Config) stsAPI
	newS3   func(cfg aws.Config, region string) s3API
	account string
}

// NewFactory loads the shared AWS configuration. No API call is made here.
func NewFactory(ctx context.Context, opts Options) (*Factory, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newFactoryFromConfig(cfg), nil
}

func newFactoryFromConfig(cfg aws.Config) *Factory {
	return &Factory{
		cfg:    cfg,
		images: map[string]ami.ImageAPI{},
		newEC2: func(cfg aws.Config, region string) ec2API {
			return ec2.NewFromConfig(cfg, func(options *ec2.Options) {
				options.Region = region
			})
		},
		newSTS: func(cfg aws.Config) stsAPI {
			return sts.NewFromConfig(cfg)
		},
		newS3: func(cfg aws.Config, region string) s3API {
			return s3.NewFromConfig(cfg, func(options *s3.Options) {
				if region != "" {
					options.Region = region
				}
			})
		},
	}
}

// Images returns the EC2 image client for region, reusing earlier clients.
func (f *Factory) Images(_ context.Context, region string) (ami.ImageAPI, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if client, ok := f.images[region]; ok {
		return client, nil
	}
	client := imageClient{client: f.newEC2(f.cfg, region), region: region}
	f.images[region] = client
	return client, nil
}

// CallerAccount resolves the account id behind the configured credentials.
func (f *Factory) CallerAccount(ctx context.Context) (string, error) {
	if f.account != "" {
		return f.account, nil
	}
	resp, err := f.newSTS(f.cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	f.account = aws.ToString(resp.Account)
	return f.account, nil
}

// ObjectStore returns an S3 uploader. An empty region keeps the shared one.
func (f *Factory) ObjectStore(region string) ObjectStore {
	return ObjectStore{client: f.newS3(f.cfg, strings.TrimSpace(region))}
}

func loadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = defaultAWSRegion
	}

	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile := strings.TrimSpace(opts.Profile); profile != "" {
		loaders = append(loaders, config.WithSharedConfigProfile(profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)
		loaders = append(loaders, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}
	return cfg, nil
}
