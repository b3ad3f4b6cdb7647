package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/sheet"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *sheet.MemoryStore
	cfg      *config.Config
	courses  *repository.CourseRepository
	lessons  *repository.LessonRepository
	quizzes  *repository.QuizRepository
	progress *repository.ProgressRepository
	users    *repository.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := sheet.NewMemoryStore()
	for _, def := range repository.Registry() {
		require.NoError(t, store.WriteHeader(context.Background(), def.Table, def.Columns))
	}
	c := cache.NewMemory(time.Minute)
	cfg := &config.Config{}
	cfg.Quiz.PassThreshold = DefaultPassThreshold
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Storage.PublicURL = "/uploads"

	return &fixture{
		store:    store,
		cfg:      cfg,
		courses:  repository.NewCourseRepository(store, c),
		lessons:  repository.NewLessonRepository(store, c),
		quizzes:  repository.NewQuizRepository(store, c),
		progress: repository.NewProgressRepository(store, c),
		users:    repository.NewUserRepository(store),
	}
}

func (f *fixture) quizService() *QuizService {
	return NewQuizService(f.lessons, f.quizzes, f.progress, f.cfg)
}

func (f *fixture) progressService() *ProgressService {
	return NewProgressService(f.progress, f.lessons, f.courses)
}

func (f *fixture) courseService() *CourseService {
	return NewCourseService(f.courses, f.lessons, f.progress, NewStorageService(f.cfg))
}

func (f *fixture) lessonService() *LessonService {
	return NewLessonService(f.lessons, f.courses, f.quizzes, f.progress)
}

func (f *fixture) addCourse(t *testing.T, id, title, category string) model.Course {
	t.Helper()
	c := model.Course{ID: id, Title: title, Description: title + " description", Category: category}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func (f *fixture) addModule(t *testing.T, id, courseID string, order int) model.Module {
	t.Helper()
	m := model.Module{ID: id, CourseID: courseID, Title: "Module " + id, Order: order}
	require.NoError(t, f.courses.CreateModule(context.Background(), m))
	return m
}

func (f *fixture) addLesson(t *testing.T, id, moduleID string, order int) model.Lesson {
	t.Helper()
	l := model.Lesson{ID: id, ModuleID: moduleID, Title: "Lesson " + id, VideoURL: "https://video/" + id, Order: order}
	require.NoError(t, f.lessons.Create(context.Background(), l))
	return l
}

// addQuestions 按给定正确答案为课时生成题目，id 为 <lesson>-q<n>
func (f *fixture) addQuestions(t *testing.T, lessonID string, correct ...string) []model.QuizQuestion {
	t.Helper()
	qs := make([]model.QuizQuestion, len(correct))
	for i, a := range correct {
		qs[i] = model.QuizQuestion{
			ID:            lessonID + "-q" + strconv.Itoa(i+1),
			LessonID:      lessonID,
			Question:      "Question " + strconv.Itoa(i+1),
			OptionA:       "A",
			OptionB:       "B",
			OptionC:       "C",
			OptionD:       "D",
			CorrectAnswer: a,
		}
	}
	n, err := f.quizzes.CreateMany(context.Background(), qs)
	require.NoError(t, err)
	require.Equal(t, len(qs), n)
	return qs
}

func (f *fixture) addProgress(t *testing.T, p model.Progress) {
	t.Helper()
	require.NoError(t, f.progress.Append(context.Background(), p))
}

// progressRows 不含表头的进度行
func (f *fixture) progressRows() [][]string {
	rows := f.store.Rows(repository.SheetProgress)
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}
