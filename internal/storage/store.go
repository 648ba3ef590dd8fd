package storage

import (
	"context"

	"fuzzylight/internal/model"
)

// Store persists evaluation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns at most limit runs, newest first. A limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
}
