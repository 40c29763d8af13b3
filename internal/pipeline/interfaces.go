package pipeline

import (
	"context"
)

type Submitter interface {
	Submit(ctx context.Context, path string) error
}
