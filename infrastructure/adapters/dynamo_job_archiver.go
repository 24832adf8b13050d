package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

type dynamoJobItem struct {
	JobID        string `dynamodbav:"job_id"`
	PromptID     string `dynamodbav:"prompt_id"`
	State        string `dynamodbav:"state"`
	Error        string `dynamodbav:"error"`
	TemplateName string `dynamodbav:"template_name"`
	CreatedAt    int64  `dynamodbav:"created_at"`
	CompletedAt  int64  `dynamodbav:"completed_at"`
	TTL          int64  `dynamodbav:"ttl"`
}

type dynamoJobArchiver struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

// NewDynamoJobArchiver persists terminal job records with a TTL. The
// in-memory registry stays the source of truth for live tracking.
func NewDynamoJobArchiver(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.JobArchiverPort {
	return &dynamoJobArchiver{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (a *dynamoJobArchiver) Archive(ctx context.Context, job domain.Job) error {
	item := dynamoJobItem{
		JobID:        job.ID,
		PromptID:     job.BackendHandle,
		State:        string(job.State),
		Error:        job.Error,
		TemplateName: job.TemplateName,
		CreatedAt:    job.CreatedAt.Unix(),
		TTL:          time.Now().Add(time.Duration(a.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	if job.CompletedAt != nil {
		item.CompletedAt = job.CompletedAt.Unix()
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to marshal job item", map[string]interface{}{
			"job_id": job.ID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(a.dynamoConfig.TableName),
	}

	_, err = a.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to archive job item", map[string]interface{}{
			"job_id": job.ID,
		})
		return err
	}

	return nil
}
