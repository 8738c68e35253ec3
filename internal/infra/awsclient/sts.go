// Where: internal/infra/awsclient/sts.go
// What: STS seam for caller identity lookups.
// Why: Let tests replace the SDK client.
package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}
