package outbound

import "context"

// ImageSourcePort resolves a request image (remote URL or inline base64
// payload) into a file inside the backend's input directory and returns the
// stored filename.
type ImageSourcePort interface {
	Resolve(ctx context.Context, image string, token string) (string, error)
}
