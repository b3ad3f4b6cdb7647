package repository

import (
	"context"
	"sort"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

type CourseRepository struct {
	Courses *Table[model.Course]
	Modules *Table[model.Module]
}

func NewCourseRepository(store sheet.Store, c cache.Cache) *CourseRepository {
	return &CourseRepository{
		Courses: NewTable(store, c, CourseSchema),
		Modules: NewTable(store, c, ModuleSchema),
	}
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	return r.Courses.All(ctx)
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (model.Course, bool, error) {
	return r.Courses.FindOne(ctx, "id", id)
}

func (r *CourseRepository) Create(ctx context.Context, c model.Course) error {
	return r.Courses.Insert(ctx, c)
}

// Replace 覆盖课程行（目前只用于更新封面），按 id 重新定位行号
func (r *CourseRepository) Replace(ctx context.Context, c model.Course) (bool, error) {
	pos, ok, err := r.Courses.FindPosition(ctx, "id", c.ID)
	if err != nil || !ok {
		return false, err
	}
	return true, r.Courses.Replace(ctx, pos, c)
}

func (r *CourseRepository) AllModules(ctx context.Context) ([]model.Module, error) {
	return r.Modules.All(ctx)
}

// ListModules 课程下的章节，按 Order 稳定排序
func (r *CourseRepository) ListModules(ctx context.Context, courseID string) ([]model.Module, error) {
	modules, err := r.Modules.Filter(ctx, "course_id", courseID)
	if err != nil {
		return nil, err
	}
	SortModules(modules)
	return modules, nil
}

func (r *CourseRepository) FindModule(ctx context.Context, id string) (model.Module, bool, error) {
	return r.Modules.FindOne(ctx, "id", id)
}

// CreateModule 课程详情里内嵌章节，所以同时失效 courses 前缀
func (r *CourseRepository) CreateModule(ctx context.Context, m model.Module) error {
	if err := r.Modules.Insert(ctx, m); err != nil {
		return err
	}
	r.Courses.invalidateAfterWrite(ctx)
	return nil
}

func SortModules(modules []model.Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})
}
