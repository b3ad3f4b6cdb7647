package repository

import (
	"context"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

type ProgressRepository struct {
	Progress *Table[model.Progress]
}

func NewProgressRepository(store sheet.Store, c cache.Cache) *ProgressRepository {
	return &ProgressRepository{Progress: NewTable(store, c, ProgressSchema)}
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.Progress, error) {
	return r.Progress.Filter(ctx, "user_id", userID)
}

// FindFresh 全表扫描查找 (user, lesson) 记录，不经过缓存
func (r *ProgressRepository) FindFresh(ctx context.Context, userID, lessonID string) (model.Progress, bool, error) {
	all, err := r.Progress.Fresh(ctx)
	if err != nil {
		return model.Progress{}, false, err
	}
	for _, p := range all {
		if p.UserID == userID && p.LessonID == lessonID {
			return p, true, nil
		}
	}
	return model.Progress{}, false, nil
}

func (r *ProgressRepository) PositionOf(ctx context.Context, id string) (int, bool, error) {
	return r.Progress.FindPosition(ctx, "id", id)
}

func (r *ProgressRepository) Append(ctx context.Context, p model.Progress) error {
	return r.Progress.Insert(ctx, p)
}

func (r *ProgressRepository) Overwrite(ctx context.Context, position int, p model.Progress) error {
	return r.Progress.Replace(ctx, position, p)
}
