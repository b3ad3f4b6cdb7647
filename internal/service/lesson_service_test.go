package service

import (
	"context"
	"testing"

	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz(q, answer string) QuizInput {
	return QuizInput{Question: q, OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectAnswer: answer}
}

func TestLessonService_DetailWithNavigation(t *testing.T) {
	f := newFixture(t)
	f.addCourse(t, "c1", "Go", "Programming")
	f.addModule(t, "m1", "c1", 1)
	f.addLesson(t, "l3", "m1", 3)
	f.addLesson(t, "l1", "m1", 1)
	f.addLesson(t, "l2", "m1", 2)
	f.addQuestions(t, "l2", "a")
	f.addProgress(t, model.Progress{ID: "p1", UserID: "u1", LessonID: "l2", Score: 100, Status: model.Completed})
	svc := f.lessonService()

	d, err := svc.Detail(context.Background(), "l2", "u1")
	require.NoError(t, err)
	assert.Equal(t, "m1", d.Lesson.Module.ID)
	assert.Equal(t, "c1", d.Lesson.Course.ID)
	require.Len(t, d.Quizzes, 1)
	require.NotNil(t, d.UserProgress)
	assert.Equal(t, 100, d.UserProgress.Score)
	require.NotNil(t, d.Navigation.PrevLesson)
	require.NotNil(t, d.Navigation.NextLesson)
	assert.Equal(t, "l1", d.Navigation.PrevLesson.ID)
	assert.Equal(t, "l3", d.Navigation.NextLesson.ID)

	first, err := svc.Detail(context.Background(), "l1", "")
	require.NoError(t, err)
	assert.Nil(t, first.Navigation.PrevLesson)
	assert.Nil(t, first.UserProgress)
}

func TestLessonService_DetailOrphanLesson(t *testing.T) {
	f := newFixture(t)
	f.addLesson(t, "l1", "gone", 1)

	d, err := f.lessonService().Detail(context.Background(), "l1", "")
	require.NoError(t, err)
	assert.Nil(t, d.Lesson.Module)
	assert.Nil(t, d.Lesson.Course)

	_, err = f.lessonService().Detail(context.Background(), "missing", "")
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}

func TestLessonService_Create(t *testing.T) {
	f := newFixture(t)
	f.addCourse(t, "c1", "Go", "Programming")
	f.addModule(t, "m1", "c1", 1)
	svc := f.lessonService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateLessonInput{ModuleID: "m1"})
	var appErr *util.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, util.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "video_url")

	_, err = svc.Create(ctx, CreateLessonInput{ModuleID: "nope", Title: "t", VideoURL: "v"})
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	l, err := svc.Create(ctx, CreateLessonInput{ModuleID: "m1", Title: "Intro", VideoURL: "https://v"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Order)

	d, err := f.courseService().Detail(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, d.Course.Modules[0].Lessons, 1)
	assert.Equal(t, l.ID, d.Course.Modules[0].Lessons[0].ID)
}

func TestLessonService_AddQuizzesSkipsInvalid(t *testing.T) {
	f := newFixture(t)
	f.addLesson(t, "l1", "m1", 1)
	svc := f.lessonService()
	ctx := context.Background()

	created, err := svc.AddQuizzes(ctx, "l1", []QuizInput{
		validQuiz("2+2?", "B"),
		validQuiz("", "a"),
		validQuiz("bad answer", "e"),
		{Question: "missing options", OptionA: "x", CorrectAnswer: "a"},
		validQuiz("3+3?", "d"),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "2+2?", created[0].Question)

	stored, err := f.quizzes.ListByLesson(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "b", stored[0].CorrectAnswer)

	_, err = svc.AddQuizzes(ctx, "l1", []QuizInput{validQuiz("", "a")})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.AddQuizzes(ctx, "l1", nil)
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.AddQuizzes(ctx, "missing", []QuizInput{validQuiz("q", "a")})
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}
