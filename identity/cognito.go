package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
)

// CognitoGroups lists user pool groups through the Cognito admin API.
type CognitoGroups struct {
	client     cip.AdminListGroupsForUserAPIClient
	userPoolID string
	metrics    *metrics.Metrics
}

var _ GroupLister = (*CognitoGroups)(nil)

// NewCognitoGroups loads the default AWS credential chain for region.
func NewCognitoGroups(ctx context.Context, region, userPoolID string, hc *http.Client, m *metrics.Metrics) (*CognitoGroups, error) {
	if userPoolID == "" {
		return nil, errors.New("[identity NewCognitoGroups] user pool ID is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if hc != nil {
		opts = append(opts, awsconfig.WithHTTPClient(hc))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("[identity NewCognitoGroups] failed to load AWS config: %w", err)
	}
	return NewCognitoGroupsWithClient(cip.NewFromConfig(cfg), userPoolID, m), nil
}

// NewCognitoGroupsWithClient wraps an existing API client.
func NewCognitoGroupsWithClient(client cip.AdminListGroupsForUserAPIClient, userPoolID string, m *metrics.Metrics) *CognitoGroups {
	return &CognitoGroups{client: client, userPoolID: userPoolID, metrics: m}
}

// ListGroupsForUser returns every group name username belongs to, following pagination.
func (c *CognitoGroups) ListGroupsForUser(ctx context.Context, username string) ([]string, error) {
	defer c.metrics.ObserveIdentity("list_groups", time.Now())

	if username == "" {
		return nil, errors.New("username is required")
	}

	paginator := cip.NewAdminListGroupsForUserPaginator(c.client, &cip.AdminListGroupsForUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})

	groups := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list groups for %q: %w", username, err)
		}
		for _, g := range page.Groups {
			if name := aws.ToString(g.GroupName); name != "" {
				groups = append(groups, name)
			}
		}
	}
	return groups, nil
}
