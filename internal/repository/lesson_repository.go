package repository

import (
	"context"
	"sort"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

type LessonRepository struct {
	Lessons *Table[model.Lesson]
	courses *Table[model.Course]
}

func NewLessonRepository(store sheet.Store, c cache.Cache) *LessonRepository {
	return &LessonRepository{
		Lessons: NewTable(store, c, LessonSchema),
		courses: NewTable(store, c, CourseSchema),
	}
}

func (r *LessonRepository) All(ctx context.Context) ([]model.Lesson, error) {
	return r.Lessons.All(ctx)
}

func (r *LessonRepository) FindByID(ctx context.Context, id string) (model.Lesson, bool, error) {
	return r.Lessons.FindOne(ctx, "id", id)
}

// ListByModule 章节下的课时，按 Order 稳定排序
func (r *LessonRepository) ListByModule(ctx context.Context, moduleID string) ([]model.Lesson, error) {
	lessons, err := r.Lessons.Filter(ctx, "module_id", moduleID)
	if err != nil {
		return nil, err
	}
	SortLessons(lessons)
	return lessons, nil
}

// ListByModules 多个章节下的全部课时，保持表中顺序
func (r *LessonRepository) ListByModules(ctx context.Context, moduleIDs []string) ([]model.Lesson, error) {
	all, err := r.Lessons.All(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(moduleIDs))
	for _, id := range moduleIDs {
		set[id] = struct{}{}
	}
	out := make([]model.Lesson, 0)
	for _, l := range all {
		if _, ok := set[l.ModuleID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LessonRepository) Create(ctx context.Context, l model.Lesson) error {
	if err := r.Lessons.Insert(ctx, l); err != nil {
		return err
	}
	r.courses.invalidateAfterWrite(ctx)
	return nil
}

func SortLessons(lessons []model.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
}
