package repository

import (
	"context"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

type QuizRepository struct {
	Questions *Table[model.QuizQuestion]
}

func NewQuizRepository(store sheet.Store, c cache.Cache) *QuizRepository {
	return &QuizRepository{Questions: NewTable(store, c, QuizSchema)}
}

func (r *QuizRepository) ListByLesson(ctx context.Context, lessonID string) ([]model.QuizQuestion, error) {
	return r.Questions.Filter(ctx, "lesson_id", lessonID)
}

// CreateMany 逐行追加；中途失败时已写入的行保留，缓存仍会失效
func (r *QuizRepository) CreateMany(ctx context.Context, questions []model.QuizQuestion) (int, error) {
	written := 0
	for _, q := range questions {
		if err := r.Questions.store.Append(ctx, QuizSchema.Table, QuizSchema.Encode(q)); err != nil {
			if written > 0 {
				r.Questions.invalidateAfterWrite(ctx)
			}
			return written, err
		}
		written++
	}
	if written > 0 {
		r.Questions.invalidateAfterWrite(ctx)
	}
	return written, nil
}
