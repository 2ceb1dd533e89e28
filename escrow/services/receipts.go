package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReceiptService stores shipment receipts on S3-compatible Spaces. The
// returned URL is recorded on the trade when the seller ships.
type ReceiptService struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewReceiptService(key, secret, region, bucket, root string) (*ReceiptService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &ReceiptService{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		root:   strings.Trim(root, "/"),
	}, nil
}

// Upload stores the receipt bytes under the trade's key and returns the
// public URL.
func (s *ReceiptService) Upload(ctx context.Context, tradeID string, body []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s", s.root, tradeID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         "public-read",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt for trade %s: %w", tradeID, err)
	}

	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key), nil
}

// Delete removes a stored receipt, used when a shipped trade is voided by
// an operator.
func (s *ReceiptService) Delete(ctx context.Context, tradeID string) error {
	key := fmt.Sprintf("%s/%s", s.root, tradeID)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete receipt for trade %s: %w", tradeID, err)
	}
	return nil
}
