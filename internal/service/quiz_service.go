package service

import (
	"context"
	"fmt"
	"time"

	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/util"
	"sheet_lms_backend/pkg/logger"

	"go.uber.org/zap"
)

const passedMessage = "Congratulations! You passed the quiz!"

type SubmitInput struct {
	UserID   string
	LessonID string
	Answers  []Answer
}

type LessonQuiz struct {
	Lesson         model.Summary          `json:"lesson"`
	Quizzes        []model.PublicQuestion `json:"quizzes"`
	TotalQuestions int                    `json:"totalQuestions"`
}

type QuizService struct {
	LessonRepo   *repository.LessonRepository
	QuizRepo     *repository.QuizRepository
	ProgressRepo *repository.ProgressRepository
	Cfg          *config.Config

	locks *keyLock
	now   func() time.Time
}

func NewQuizService(
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	progressRepo *repository.ProgressRepository,
	cfg *config.Config,
) *QuizService {
	return &QuizService{
		LessonRepo:   lessonRepo,
		QuizRepo:     quizRepo,
		ProgressRepo: progressRepo,
		Cfg:          cfg,
		locks:        newKeyLock(),
		now:          time.Now,
	}
}

func (s *QuizService) passThreshold() int {
	if s.Cfg == nil || s.Cfg.Quiz.PassThreshold <= 0 {
		return DefaultPassThreshold
	}
	return s.Cfg.Quiz.PassThreshold
}

// ResultMessage 提交结果提示语
func (s *QuizService) ResultMessage(r ScoreResult) string {
	if r.Passed {
		return passedMessage
	}
	return fmt.Sprintf("Keep trying! You need %d%% to pass.", s.passThreshold())
}

// GetLessonQuiz 课时的题目，不含正确答案
func (s *QuizService) GetLessonQuiz(ctx context.Context, lessonID string) (*LessonQuiz, error) {
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
	return &LessonQuiz{
		Lesson:         model.Summary{ID: lesson.ID, Title: lesson.Title},
		Quizzes:        public,
		TotalQuestions: len(public),
	}, nil
}

// Submit 判分并写入进度。同一 (user, lesson) 的提交在进程内串行执行，
// 保证表中只有一行进度，后提交的覆盖先提交的。
func (s *QuizService) Submit(ctx context.Context, in SubmitInput) (*ScoreResult, error) {
	if in.LessonID == "" {
		return nil, util.FieldError("lesson_id", "Lesson ID is required")
	}
	if len(in.Answers) == 0 {
		return nil, util.FieldError("answers", "Answers array is required")
	}

	_, exists, err := s.LessonRepo.FindByID(ctx, in.LessonID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewNotFound("Lesson not found")
	}

	questions, err := s.QuizRepo.ListByLesson(ctx, in.LessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	result := ScoreQuiz(questions, in.Answers, s.passThreshold())

	if err := s.upsertProgress(ctx, in.UserID, in.LessonID, result); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz submitted",
		zap.String("user_id", in.UserID),
		zap.String("lesson_id", in.LessonID),
		zap.Int("score", result.Score),
		zap.String("status", string(result.Status)),
	)
	return &result, nil
}

func (s *QuizService) upsertProgress(ctx context.Context, userID, lessonID string, result ScoreResult) error {
	unlock := s.locks.Lock(userID + "\x00" + lessonID)
	defer unlock()

	row := model.Progress{
		UserID:    userID,
		LessonID:  lessonID,
		Score:     result.Score,
		Status:    result.Status,
		UpdatedAt: s.now().UTC().Format(model.TimeLayout),
	}

	existing, found, err := s.ProgressRepo.FindFresh(ctx, userID, lessonID)
	if err != nil {
		return err
	}
	if found {
		row.ID = existing.ID
		pos, ok, err := s.ProgressRepo.PositionOf(ctx, existing.ID)
		if err != nil {
			return err
		}
		if ok {
			logger.Log.Debug("overwrite progress row",
				zap.String("id", row.ID),
				zap.Int("position", pos),
			)
			return s.ProgressRepo.Overwrite(ctx, pos, row)
		}
		// 两次读取之间该行被外部删除，保留原 id 重新追加
		logger.Log.Warn("progress row disappeared before overwrite", zap.String("id", row.ID))
	} else {
		row.ID = model.GenerateUUID()
	}

	logger.Log.Debug("append progress row", zap.String("id", row.ID))
	return s.ProgressRepo.Append(ctx, row)
}
