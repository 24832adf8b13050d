package adapters

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
)

type s3VideoPublisher struct {
	logger   outbound.LoggerPort
	s3Svc    *s3.S3
	s3Config *config.S3Config
}

func NewS3VideoPublisher(logger outbound.LoggerPort, s3Svc *s3.S3, s3Config *config.S3Config) outbound.VideoPublisherPort {
	return &s3VideoPublisher{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3VideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	itemPath := s.getS3ItemPath(req)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(itemPath),
		Body:        bytes.NewReader(req.Data),
		ContentType: aws.String("video/mp4"),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload video to S3", map[string]interface{}{
			"job_id": req.JobID,
			"key":    itemPath,
		})
		return nil, err
	}

	return &outbound.PublishVideoResponse{
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Config.BucketName, s.s3Config.Region, itemPath),
		VideoKey:    itemPath,
		StoreRegion: s.s3Config.Region,
	}, nil
}

func (s *s3VideoPublisher) getS3ItemPath(req outbound.PublishVideoRequest) string {
	return fmt.Sprintf("jobs/%s/%s-%s", req.JobID, uuid.NewString(), req.Filename)
}
