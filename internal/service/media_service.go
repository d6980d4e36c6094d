package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/crescentlab/postpilot/configs"
)

const presignTTL = 1 * time.Hour

// MediaService resolves stored media references for publishing.
// Absolute URLs pass through untouched; bare object keys are presigned
// against the R2 bucket so platform APIs can pull the media by URL.
type MediaService struct {
	config cfg.Config
}

func NewMediaService(cfg cfg.Config) *MediaService {
	return &MediaService{config: cfg}
}

func (m *MediaService) r2Client() (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.config.R2.AccessKey, m.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.config.R2.AccountID))
	}), nil
}

// Resolve maps each media reference to a fetchable URL. Presigning is
// best-effort: a reference that cannot be presigned is passed through
// as-is and the platform call reports the real failure.
func (m *MediaService) Resolve(ctx context.Context, refs []string) []string {
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.Contains(ref, "://") {
			resolved = append(resolved, ref)
			continue
		}

		presigned, err := m.presignGet(ctx, ref)
		if err != nil {
			slog.Info(err.Error())
			resolved = append(resolved, ref)
			continue
		}
		resolved = append(resolved, presigned)
	}
	return resolved
}

func (m *MediaService) presignGet(ctx context.Context, key string) (string, error) {
	client, err := m.r2Client()
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.config.R2.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return req.URL, nil
}
