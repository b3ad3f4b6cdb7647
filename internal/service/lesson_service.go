package service

import (
	"context"
	"strings"

	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/util"
	"sheet_lms_backend/pkg/logger"

	"go.uber.org/zap"
)

type LessonView struct {
	model.Lesson
	Module *model.Summary `json:"module"`
	Course *model.Summary `json:"course"`
}

type Navigation struct {
	PrevLesson *model.Summary `json:"prevLesson"`
	NextLesson *model.Summary `json:"nextLesson"`
}

type LessonDetail struct {
	Lesson       LessonView             `json:"lesson"`
	Quizzes      []model.PublicQuestion `json:"quizzes"`
	UserProgress *model.Progress        `json:"userProgress"`
	Navigation   Navigation             `json:"navigation"`
}

type CreateLessonInput struct {
	ModuleID string
	Title    string
	VideoURL string
	Summary  string
	Order    int
}

// QuizInput 新增题目，correct_answer 为 a-d
type QuizInput struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

func (q QuizInput) valid() bool {
	if strings.TrimSpace(q.Question) == "" {
		return false
	}
	for _, o := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if strings.TrimSpace(o) == "" {
			return false
		}
	}
	return model.ValidAnswer(q.CorrectAnswer)
}

type CreatedQuiz struct {
	ID       string `json:"id"`
	LessonID string `json:"lesson_id"`
	Question string `json:"question"`
}

type LessonService struct {
	LessonRepo   *repository.LessonRepository
	CourseRepo   *repository.CourseRepository
	QuizRepo     *repository.QuizRepository
	ProgressRepo *repository.ProgressRepository
}

func NewLessonService(
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	quizRepo *repository.QuizRepository,
	progressRepo *repository.ProgressRepository,
) *LessonService {
	return &LessonService{
		LessonRepo:   lessonRepo,
		CourseRepo:   courseRepo,
		QuizRepo:     quizRepo,
		ProgressRepo: progressRepo,
	}
}

// Detail 课时详情：所属章节/课程、题目（不含答案）、用户进度、同章节前后课时
func (s *LessonService) Detail(ctx context.Context, lessonID, userID string) (*LessonDetail, error) {
	lesson, exists, err := s.LessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewNotFound("Lesson not found")
	}

	questions, err := s.QuizRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	public := make([]model.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = q.Public()
	}

	detail := &LessonDetail{
		Lesson:  LessonView{Lesson: lesson},
		Quizzes: public,
	}

	if userID != "" {
		rows, err := s.ProgressRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i].LessonID == lessonID {
				p := rows[i]
				detail.UserProgress = &p
				break
			}
		}
	}

	module, found, err := s.CourseRepo.FindModule(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	if !found {
		return detail, nil
	}
	detail.Lesson.Module = &model.Summary{ID: module.ID, Title: module.Title}

	course, found, err := s.CourseRepo.FindByID(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	if found {
		detail.Lesson.Course = &model.Summary{ID: course.ID, Title: course.Title}
	}

	siblings, err := s.LessonRepo.ListByModule(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	detail.Navigation = navigationOf(siblings, lessonID)
	return detail, nil
}

func navigationOf(sorted []model.Lesson, lessonID string) Navigation {
	var nav Navigation
	for i, l := range sorted {
		if l.ID != lessonID {
			continue
		}
		if i > 0 {
			nav.PrevLesson = &model.Summary{ID: sorted[i-1].ID, Title: sorted[i-1].Title}
		}
		if i < len(sorted)-1 {
			nav.NextLesson = &model.Summary{ID: sorted[i+1].ID, Title: sorted[i+1].Title}
		}
		break
	}
	return nav
}

func (s *LessonService) Create(ctx context.Context, in CreateLessonInput) (model.Lesson, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.ModuleID) == "" {
		fields["module_id"] = "Module ID is required"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		fields["video_url"] = "Video URL is required"
	}
	if in.Order < 0 {
		fields["order"] = "Order must be a positive integer"
	}
	if len(fields) > 0 {
		return model.Lesson{}, util.NewValidationError("Module ID, title, and video URL are required", fields)
	}
	if in.Order == 0 {
		in.Order = 1
	}

	if _, exists, err := s.CourseRepo.FindModule(ctx, in.ModuleID); err != nil {
		return model.Lesson{}, err
	} else if !exists {
		return model.Lesson{}, util.NewNotFound("Module not found")
	}

	lesson := model.Lesson{
		ID:       model.GenerateUUID(),
		ModuleID: in.ModuleID,
		Title:    strings.TrimSpace(in.Title),
		VideoURL: strings.TrimSpace(in.VideoURL),
		Summary:  in.Summary,
		Order:    in.Order,
	}
	if err := s.LessonRepo.Create(ctx, lesson); err != nil {
		return model.Lesson{}, err
	}
	return lesson, nil
}

// AddQuizzes 批量添加题目，不完整或答案不在 a-d 内的条目跳过
func (s *LessonService) AddQuizzes(ctx context.Context, lessonID string, inputs []QuizInput) ([]CreatedQuiz, error) {
	if len(inputs) == 0 {
		return nil, util.FieldError("questions", "Questions array is required")
	}

	if _, exists, err := s.LessonRepo.FindByID(ctx, lessonID); err != nil {
		return nil, err
	} else if !exists {
		return nil, util.NewNotFound("Lesson not found")
	}

	questions := make([]model.QuizQuestion, 0, len(inputs))
	for _, in := range inputs {
		if !in.valid() {
			continue
		}
		questions = append(questions, model.QuizQuestion{
			ID:            model.GenerateUUID(),
			LessonID:      lessonID,
			Question:      in.Question,
			OptionA:       in.OptionA,
			OptionB:       in.OptionB,
			OptionC:       in.OptionC,
			OptionD:       in.OptionD,
			CorrectAnswer: model.NormalizeAnswer(in.CorrectAnswer),
		})
	}
	if len(questions) == 0 {
		return nil, util.FieldError("questions", "No valid quiz questions provided")
	}
	if skipped := len(inputs) - len(questions); skipped > 0 {
		logger.Log.Info("Skipped invalid quiz questions",
			zap.String("lesson_id", lessonID),
			zap.Int("skipped", skipped),
		)
	}

	written, err := s.QuizRepo.CreateMany(ctx, questions)
	if err != nil {
		logger.Log.Error("Quiz batch interrupted",
			zap.String("lesson_id", lessonID),
			zap.Int("written", written),
			zap.Error(err),
		)
		return nil, err
	}

	out := make([]CreatedQuiz, written)
	for i := 0; i < written; i++ {
		out[i] = CreatedQuiz{ID: questions[i].ID, LessonID: lessonID, Question: questions[i].Question}
	}
	return out, nil
}
