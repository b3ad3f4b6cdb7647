package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/util"
)

type ListCoursesQuery struct {
	Page     int
	Limit    int
	Category string
}

type CourseListItem struct {
	model.Course
	ModuleCount int `json:"moduleCount"`
}

type CourseList struct {
	Courses    []CourseListItem `json:"courses"`
	Pagination util.Pagination  `json:"pagination"`
}

type ModuleWithLessons struct {
	model.Module
	Lessons []model.Lesson `json:"lessons"`
}

type CourseWithModules struct {
	model.Course
	Modules []ModuleWithLessons `json:"modules"`
}

type CourseDetail struct {
	Course       CourseWithModules `json:"course"`
	UserProgress []model.Progress  `json:"userProgress"`
}

type CreateCourseInput struct {
	Title       string
	Description string
	Category    string
	Thumbnail   string
}

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	ProgressRepo *repository.ProgressRepository
	Storage      *StorageService
	now          func() time.Time
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		ProgressRepo: progressRepo,
		Storage:      storage,
		now:          time.Now,
	}
}

// List 按分类过滤（不区分大小写）后分页，附带每门课的章节数
func (s *CourseService) List(ctx context.Context, q ListCoursesQuery) (*CourseList, error) {
	if q.Page < 1 {
		q.Page = util.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = util.DefaultLimit
	}
	if q.Limit > util.MaxLimit {
		q.Limit = util.MaxLimit
	}

	courses, err := s.CourseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if q.Category != "" {
		filtered := make([]model.Course, 0, len(courses))
		for _, c := range courses {
			if strings.EqualFold(c.Category, q.Category) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	// 先判断页码是否越界，再做乘法，避免超大页码溢出
	start := len(courses)
	if q.Page-1 <= len(courses)/q.Limit {
		start = min((q.Page-1)*q.Limit, len(courses))
	}
	end := min(start+q.Limit, len(courses))
	page := courses[start:end]

	modules, err := s.CourseRepo.AllModules(ctx)
	if err != nil {
		return nil, err
	}
	moduleCount := make(map[string]int)
	for _, m := range modules {
		moduleCount[m.CourseID]++
	}

	items := make([]CourseListItem, len(page))
	for i, c := range page {
		items[i] = CourseListItem{Course: c, ModuleCount: moduleCount[c.ID]}
	}

	return &CourseList{
		Courses:    items,
		Pagination: util.NewPagination(q.Page, q.Limit, len(courses)),
	}, nil
}

// Categories 去重后的分类，保持首次出现的顺序，忽略空分类
func (s *CourseService) Categories(ctx context.Context) ([]string, error) {
	courses, err := s.CourseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range courses {
		if strings.TrimSpace(c.Category) == "" {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	return out, nil
}

// Detail 课程及其章节、课时；userID 非空时附带该用户的全部进度
func (s *CourseService) Detail(ctx context.Context, courseID, userID string) (*CourseDetail, error) {
	course, exists, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewNotFound("Course not found")
	}

	modules, err := s.CourseRepo.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	outline, err := s.outline(ctx, modules)
	if err != nil {
		return nil, err
	}

	userProgress := make([]model.Progress, 0)
	if userID != "" {
		userProgress, err = s.ProgressRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return &CourseDetail{
		Course:       CourseWithModules{Course: course, Modules: outline},
		UserProgress: userProgress,
	}, nil
}

func (s *CourseService) outline(ctx context.Context, modules []model.Module) ([]ModuleWithLessons, error) {
	ids := make([]string, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	lessons, err := s.LessonRepo.ListByModules(ctx, ids)
	if err != nil {
		return nil, err
	}
	byModule := make(map[string][]model.Lesson, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}

	out := make([]ModuleWithLessons, len(modules))
	for i, m := range modules {
		ls := byModule[m.ID]
		if ls == nil {
			ls = make([]model.Lesson, 0)
		}
		repository.SortLessons(ls)
		out[i] = ModuleWithLessons{Module: m, Lessons: ls}
	}
	return out, nil
}

func (s *CourseService) Create(ctx context.Context, in CreateCourseInput, instructorID string) (model.Course, error) {
	course := model.Course{
		ID:           model.GenerateUUID(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		Thumbnail:    in.Thumbnail,
		InstructorID: instructorID,
		CreatedAt:    s.now().UTC().Format(model.TimeLayout),
	}

	fields := map[string]string{}
	if course.Title == "" {
		fields["title"] = "Title is required"
	}
	if course.Description == "" {
		fields["description"] = "Description is required"
	}
	if course.Category == "" {
		fields["category"] = "Category is required"
	}
	if len(fields) > 0 {
		return model.Course{}, util.NewValidationError("Validation failed", fields)
	}

	if err := s.CourseRepo.Create(ctx, course); err != nil {
		return model.Course{}, err
	}
	return course, nil
}

// AddModule order 缺省为 1
func (s *CourseService) AddModule(ctx context.Context, courseID, title string, order int) (model.Module, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Module{}, util.FieldError("title", "Module title is required")
	}
	if order == 0 {
		order = 1
	}
	if order < 1 {
		return model.Module{}, util.FieldError("order", "Order must be a positive integer")
	}

	if _, exists, err := s.CourseRepo.FindByID(ctx, courseID); err != nil {
		return model.Module{}, err
	} else if !exists {
		return model.Module{}, util.NewNotFound("Course not found")
	}

	module := model.Module{
		ID:       model.GenerateUUID(),
		CourseID: courseID,
		Title:    title,
		Order:    order,
	}
	if err := s.CourseRepo.CreateModule(ctx, module); err != nil {
		return model.Module{}, err
	}
	return module, nil
}

// UploadThumbnail 上传封面并回写课程行
func (s *CourseService) UploadThumbnail(ctx context.Context, courseID, ext string, reader io.Reader, size int64, contentType string) (model.Course, error) {
	course, exists, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		return model.Course{}, err
	}
	if !exists {
		return model.Course{}, util.NewNotFound("Course not found")
	}

	key := ThumbnailKey(courseID, ext, s.now())
	url, err := s.Storage.SaveThumbnail(ctx, key, reader, size, contentType)
	if err != nil {
		return model.Course{}, fmt.Errorf("upload thumbnail: %w", err)
	}

	course.Thumbnail = url
	found, err := s.CourseRepo.Replace(ctx, course)
	if err != nil || !found {
		s.Storage.Discard(ctx, key)
		if err != nil {
			return model.Course{}, err
		}
		return model.Course{}, util.NewNotFound("Course not found")
	}
	return course, nil
}
