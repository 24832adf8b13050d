package outbound

import "context"

type PublishVideoRequest struct {
	JobID    string
	Filename string
	Data     []byte
}

type PublishVideoResponse struct {
	URL         string
	VideoKey    string
	StoreRegion string
}

type VideoPublisherPort interface {
	Publish(ctx context.Context, req PublishVideoRequest) (*PublishVideoResponse, error)
}
