package service

import (
	"context"

	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/util"
)

type EnrichedProgress struct {
	model.Progress
	Lesson *model.Summary `json:"lesson"`
	Module *model.Summary `json:"module"`
	Course *model.Summary `json:"course"`
}

type UserStatistics struct {
	TotalLessons         int `json:"totalLessons"`
	CompletedLessons     int `json:"completedLessons"`
	CompletionPercentage int `json:"completionPercentage"`
	AverageScore         int `json:"averageScore"`
	InProgressCount      int `json:"inProgressCount"`
}

type UserProgress struct {
	Progress   []EnrichedProgress `json:"progress"`
	Statistics UserStatistics     `json:"statistics"`
}

type LessonProgressItem struct {
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Progress model.LessonProgress `json:"progress"`
}

type ModuleProgress struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Order            int                  `json:"order"`
	Lessons          []LessonProgressItem `json:"lessons"`
	CompletedLessons int                  `json:"completedLessons"`
	TotalLessons     int                  `json:"totalLessons"`
	IsCompleted      bool                 `json:"isCompleted"`
}

type CourseStatistics struct {
	TotalModules         int `json:"totalModules"`
	TotalLessons         int `json:"totalLessons"`
	CompletedLessons     int `json:"completedLessons"`
	CompletionPercentage int `json:"completionPercentage"`
}

type CourseInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CourseProgress struct {
	Course         CourseInfo       `json:"course"`
	ModuleProgress []ModuleProgress `json:"moduleProgress"`
	Statistics     CourseStatistics `json:"statistics"`
}

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	LessonRepo   *repository.LessonRepository
	CourseRepo   *repository.CourseRepository
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		LessonRepo:   lessonRepo,
		CourseRepo:   courseRepo,
	}
}

// ForUser 用户的全部进度及总体统计，只允许本人或管理员查看
func (s *ProgressService) ForUser(ctx context.Context, requester *util.Claims, userID string) (*UserProgress, error) {
	if !requester.CanAccess(userID) {
		return nil, util.NewForbidden("You can only view your own progress")
	}

	rows, err := s.ProgressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.LessonRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := s.CourseRepo.AllModules(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	lessonByID := make(map[string]model.Lesson, len(lessons))
	for _, l := range lessons {
		lessonByID[l.ID] = l
	}
	moduleByID := make(map[string]model.Module, len(modules))
	for _, m := range modules {
		moduleByID[m.ID] = m
	}
	courseByID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}

	enriched := make([]EnrichedProgress, len(rows))
	for i, p := range rows {
		e := EnrichedProgress{Progress: p}
		if l, ok := lessonByID[p.LessonID]; ok {
			e.Lesson = &model.Summary{ID: l.ID, Title: l.Title}
			if m, ok := moduleByID[l.ModuleID]; ok {
				e.Module = &model.Summary{ID: m.ID, Title: m.Title}
				if c, ok := courseByID[m.CourseID]; ok {
					e.Course = &model.Summary{ID: c.ID, Title: c.Title}
				}
			}
		}
		enriched[i] = e
	}

	completed := CountStatus(rows, model.Completed)
	return &UserProgress{
		Progress: enriched,
		Statistics: UserStatistics{
			TotalLessons:         len(lessons),
			CompletedLessons:     completed,
			CompletionPercentage: CompletionPercentage(completed, len(lessons)),
			AverageScore:         AverageScore(rows),
			InProgressCount:      CountStatus(rows, model.Ongoing),
		},
	}, nil
}

// ForCourse 用户在一门课程内按章节汇总的进度
func (s *ProgressService) ForCourse(ctx context.Context, userID, courseID string) (*CourseProgress, error) {
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
	ids := make([]string, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	lessons, err := s.LessonRepo.ListByModules(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows, err := s.ProgressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress := ProgressByLesson(rows)

	byModule := make(map[string][]model.Lesson, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}

	moduleProgress := make([]ModuleProgress, len(modules))
	for i, m := range modules {
		ls := byModule[m.ID]
		repository.SortLessons(ls)

		items := make([]LessonProgressItem, len(ls))
		for j, l := range ls {
			items[j] = LessonProgressItem{ID: l.ID, Title: l.Title, Progress: LessonProgressOf(progress, l.ID)}
		}
		done, isCompleted := ModuleCompletion(ls, progress)
		moduleProgress[i] = ModuleProgress{
			ID:               m.ID,
			Title:            m.Title,
			Order:            m.Order,
			Lessons:          items,
			CompletedLessons: done,
			TotalLessons:     len(ls),
			IsCompleted:      isCompleted,
		}
	}

	completed := CompletedLessons(lessons, progress)
	return &CourseProgress{
		Course:         CourseInfo{ID: course.ID, Title: course.Title, Description: course.Description},
		ModuleProgress: moduleProgress,
		Statistics: CourseStatistics{
			TotalModules:         len(modules),
			TotalLessons:         len(lessons),
			CompletedLessons:     completed,
			CompletionPercentage: CompletionPercentage(completed, len(lessons)),
		},
	}, nil
}
