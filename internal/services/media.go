package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLTTL = 5 * time.Minute

// MediaService issues pre-signed upload URLs for message attachments.
// Clients upload directly to object storage and then send a message
// carrying the returned public URL.
type MediaService struct {
	s3Client *s3.Client
	bucket   string
	endpoint string
	region   string
}

// NewMediaService creates a new media service
func NewMediaService(region, bucket, accessKey, secretKey, endpoint string) (*MediaService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaService{
		s3Client: s3Client,
		bucket:   bucket,
		endpoint: endpoint,
		region:   region,
	}, nil
}

// UploadRequest represents a request for a pre-signed upload URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the pre-signed upload URL response
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	MediaURL  string `json:"media_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignUpload generates a pre-signed URL for uploading an attachment.
// The object key is {project_id}/{random}{ext} so project media stays
// grouped in the bucket.
func (s *MediaService) PresignUpload(ctx context.Context, projectID, filename, contentType string) (*UploadResponse, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s%s", projectID, uuid.New().String(), path.Ext(filename))

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		MediaURL:  s.publicURL(key),
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}

// publicURL returns the URL the object is reachable at after upload.
func (s *MediaService) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
