package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// AWSAuthConfig carries optional static credentials and endpoint overrides shared by SQS and SNS.
type AWSAuthConfig struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// loadAWSConfig resolves the SDK config; static keys win over the default chain.
func loadAWSConfig(ctx context.Context, auth AWSAuthConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(auth.Region)}
	if auth.AccessKeyID != "" && auth.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(auth.AccessKeyID, auth.SecretAccessKey, auth.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if auth.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(auth.Endpoint)
	}
	return cfg, nil
}

func trimAuth(a AWSAuthConfig) AWSAuthConfig {
	a.Region = trim(a.Region)
	a.AccessKeyID = trim(a.AccessKeyID)
	a.SecretAccessKey = trim(a.SecretAccessKey)
	a.SessionToken = trim(a.SessionToken)
	a.Endpoint = trim(a.Endpoint)
	return a
}
