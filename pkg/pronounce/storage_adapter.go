package pronounce

import (
	"context"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/storage"
)

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (or creates) the attempt history at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveAttempt(ctx context.Context, a models.AttemptDetail) (string, error) {
	return s.db.SaveAttempt(ctx, a)
}

func (s *storageAdapter) GetAttempt(ctx context.Context, id string) (*models.AttemptDetail, error) {
	return s.db.GetAttempt(ctx, id)
}

func (s *storageAdapter) ListAttempts(ctx context.Context, limit int) ([]models.AttemptSummary, error) {
	return s.db.ListAttempts(ctx, limit)
}

func (s *storageAdapter) DeleteAttempt(ctx context.Context, id string) error {
	return s.db.DeleteAttempt(ctx, id)
}

func (s *storageAdapter) Stats(ctx context.Context) (models.AttemptStats, error) {
	return s.db.Stats(ctx)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
