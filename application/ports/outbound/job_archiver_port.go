package outbound

import (
	"context"

	"github.com/zullum/comfyui-wan/domain"
)

// JobArchiverPort persists terminal job records for later inspection. Job
// tracking itself stays process-local; archiving is best-effort.
type JobArchiverPort interface {
	Archive(ctx context.Context, job domain.Job) error
}
