package ingest

import "context"

type IngestUsecase interface {
	Ingest(ctx context.Context, content, filename string) (int, error)
}
