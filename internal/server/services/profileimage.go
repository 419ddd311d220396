package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignExpiry = 15 * time.Minute

// ProfileImageUpload is a presigned PUT and the object key it writes.
type ProfileImageUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProfileImageService hands out presigned object storage URLs for profile
// images. Browsers upload and download directly; the server stores only
// the object key.
type ProfileImageService struct {
	bucket  string
	presign *s3.PresignClient
	now     func() time.Time
}

// NewProfileImageService builds an S3 presign client from the storage
// settings in cfg.
func NewProfileImageService(ctx context.Context, cfg *config.Config) (*ProfileImageService, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &ProfileImageService{
		bucket:  cfg.S3Bucket,
		presign: s3.NewPresignClient(client),
		now:     time.Now,
	}, nil
}

func profileImageKey(uid string) string {
	return fmt.Sprintf("profiles/%s/%s", uid, uuid.NewString())
}

// CreateUpload presigns a PUT for a fresh object key under the user's prefix.
func (s *ProfileImageService) CreateUpload(ctx context.Context, uid string) (*ProfileImageUpload, error) {
	key := profileImageKey(uid)
	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("%w: presign upload: %v", common.ErrUpstream, err)
	}
	return &ProfileImageUpload{Key: key, UploadURL: req.URL, ExpiresAt: s.now().Add(presignExpiry)}, nil
}

// DownloadURL presigns a GET for key.
func (s *ProfileImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: no profile image", common.ErrNotFound)
	}
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("%w: presign download: %v", common.ErrUpstream, err)
	}
	return req.URL, nil
}
