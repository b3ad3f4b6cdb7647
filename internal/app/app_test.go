package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/sheet"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
	store  *sheet.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Sheets.Backend = config.SheetsBackendMemory
	cfg.Cache.Backend = config.CacheBackendMemory
	cfg.JWT.Secret = "app-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Quiz.PassThreshold = 70

	store := sheet.NewMemoryStore()
	require.NoError(t, InitSheets(context.Background(), store))

	a := Build(cfg, store, cache.NewMemory(time.Minute))
	return &testServer{t: t, router: a.Router, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type authData struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

func (s *testServer) register(name, email, role string) authData {
	s.t.Helper()
	body := map[string]string{"name": name, "email": email, "password": "secret123"}
	if role != "" {
		body["role"] = role
	}
	code, env := s.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	return decode[authData](s.t, env.Data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	status := decode[struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}](t, env.Data)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "local", status.Components["storage"])
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.register("Ada", "ada@example.com", "")
	assert.Equal(t, "student", ada.User.Role)

	code, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "ADA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	login := decode[authData](t, env.Data)

	code, env = s.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterValidationEnvelope(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "123", "role": "admin",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")
	assert.Contains(t, env.Errors, "role")
	assert.Len(t, s.store.Rows(repository.SheetUsers), 1, "nothing written")
}

func TestLearningFlow(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register("Grace", "grace@example.com", "instructor")
	student := s.register("Ada", "ada@example.com", "")

	// 学生不能创建课程
	code, _ := s.do(http.MethodPost, "/api/courses", student.Token, map[string]string{
		"title": "Go", "description": "Learn Go", "category": "Programming",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(http.MethodPost, "/api/courses", instructor.Token, map[string]string{
		"title": "Go", "description": "Learn Go", "category": "Programming",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	courseID := decode[struct {
		Course struct{ ID string } `json:"course"`
	}](t, env.Data).Course.ID

	code, env = s.do(http.MethodPost, "/api/courses/"+courseID+"/modules", instructor.Token, map[string]interface{}{
		"title": "Basics", "order": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	moduleID := decode[struct {
		Module struct{ ID string } `json:"module"`
	}](t, env.Data).Module.ID

	code, env = s.do(http.MethodPost, "/api/lessons", instructor.Token, map[string]interface{}{
		"module_id": moduleID, "title": "Hello", "video_url": "https://video/hello", "order": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	lessonID := decode[struct {
		Lesson struct{ ID string } `json:"lesson"`
	}](t, env.Data).Lesson.ID

	questions := []map[string]string{}
	for _, answer := range []string{"b", "c", "a", "d"} {
		questions = append(questions, map[string]string{
			"question": "Pick " + answer, "option_a": "A", "option_b": "B", "option_c": "C", "option_d": "D",
			"correct_answer": answer,
		})
	}
	code, env = s.do(http.MethodPost, "/api/lessons/"+lessonID+"/quizzes", instructor.Token, map[string]interface{}{
		"questions": questions,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "4 quiz questions added successfully", env.Message)

	code, env = s.do(http.MethodGet, "/api/quiz/lesson/"+lessonID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "correct_answer")
	quiz := decode[struct {
		Quizzes []struct {
			ID       string `json:"id"`
			Question string `json:"question"`
		} `json:"quizzes"`
		TotalQuestions int `json:"totalQuestions"`
	}](t, env.Data)
	require.Equal(t, 4, quiz.TotalQuestions)

	answersWith := func(correct int) []map[string]string {
		want := []string{"b", "c", "a", "d"}
		out := make([]map[string]string, len(quiz.Quizzes))
		for i, q := range quiz.Quizzes {
			sel := want[i]
			if i >= correct {
				sel = "z"
			}
			out[i] = map[string]string{"quiz_id": q.ID, "selected_answer": sel}
		}
		return out
	}

	code, env = s.do(http.MethodPost, "/api/quiz/submit", student.Token, map[string]interface{}{
		"lesson_id": lessonID, "answers": answersWith(3),
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Congratulations! You passed the quiz!", env.Message)
	result := decode[struct {
		Score  int    `json:"score"`
		Status string `json:"status"`
	}](t, env.Data)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, "completed", result.Status)

	code, env = s.do(http.MethodPost, "/api/quiz/submit", student.Token, map[string]interface{}{
		"lesson_id": lessonID, "answers": answersWith(1),
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Keep trying! You need 70% to pass.", env.Message)
	assert.Len(t, s.store.Rows(repository.SheetProgress), 2, "header plus one progress row")

	code, env = s.do(http.MethodGet, "/api/progress/course/"+courseID, student.Token, nil)
	require.Equal(t, http.StatusOK, code)
	cp := decode[struct {
		ModuleProgress []struct {
			Lessons []struct {
				Progress struct {
					Score  int    `json:"score"`
					Status string `json:"status"`
				} `json:"progress"`
			} `json:"lessons"`
		} `json:"moduleProgress"`
		Statistics struct {
			TotalLessons         int `json:"totalLessons"`
			CompletionPercentage int `json:"completionPercentage"`
		} `json:"statistics"`
	}](t, env.Data)
	require.Len(t, cp.ModuleProgress, 1)
	assert.Equal(t, 25, cp.ModuleProgress[0].Lessons[0].Progress.Score)
	assert.Equal(t, "ongoing", cp.ModuleProgress[0].Lessons[0].Progress.Status)
	assert.Equal(t, 1, cp.Statistics.TotalLessons)
	assert.Equal(t, 0, cp.Statistics.CompletionPercentage)

	code, env = s.do(http.MethodGet, "/api/progress/"+student.User.ID, student.Token, nil)
	require.Equal(t, http.StatusOK, code)
	up := decode[struct {
		Progress   []json.RawMessage `json:"progress"`
		Statistics struct {
			AverageScore    int `json:"averageScore"`
			InProgressCount int `json:"inProgressCount"`
		} `json:"statistics"`
	}](t, env.Data)
	assert.Len(t, up.Progress, 1)
	assert.Equal(t, 25, up.Statistics.AverageScore)
	assert.Equal(t, 1, up.Statistics.InProgressCount)

	code, env = s.do(http.MethodGet, "/api/progress/"+student.User.ID, instructor.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You can only view your own progress", env.Message)

	code, env = s.do(http.MethodGet, "/api/courses/"+courseID, student.Token, nil)
	require.Equal(t, http.StatusOK, code)
	detail := decode[struct {
		Course struct {
			Modules []struct {
				Lessons []json.RawMessage `json:"lessons"`
			} `json:"modules"`
		} `json:"course"`
		UserProgress []json.RawMessage `json:"userProgress"`
	}](t, env.Data)
	require.Len(t, detail.Course.Modules, 1)
	assert.Len(t, detail.Course.Modules[0].Lessons, 1)
	assert.Len(t, detail.UserProgress, 1)
}

func TestSubmitErrors(t *testing.T) {
	s := newTestServer(t)
	student := s.register("Ada", "ada@example.com", "")

	code, _ := s.do(http.MethodPost, "/api/quiz/submit", "", map[string]interface{}{"lesson_id": "l1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/quiz/submit", student.Token, map[string]interface{}{"lesson_id": "l1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "answers")

	code, _ = s.do(http.MethodPost, "/api/quiz/submit", student.Token, map[string]interface{}{
		"lesson_id": "missing",
		"answers":   []map[string]string{{"quiz_id": "q1", "selected_answer": "a"}},
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCourseListing(t *testing.T) {
	s := newTestServer(t)
	instructor := s.register("Grace", "grace@example.com", "instructor")
	for _, c := range []map[string]string{
		{"title": "Go", "description": "d", "category": "Programming"},
		{"title": "Paint", "description": "d", "category": "Art"},
		{"title": "Rust", "description": "d", "category": "Programming"},
	} {
		code, env := s.do(http.MethodPost, "/api/courses", instructor.Token, c)
		require.Equal(t, http.StatusCreated, code, env.Message)
	}

	code, env := s.do(http.MethodGet, "/api/courses?category=programming&limit=1&page=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Courses []struct {
			Title string `json:"title"`
		} `json:"courses"`
		Pagination struct {
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}](t, env.Data)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, "Rust", list.Courses[0].Title)
	assert.Equal(t, 2, list.Pagination.TotalItems)
	assert.Equal(t, 2, list.Pagination.TotalPages)

	code, env = s.do(http.MethodGet, "/api/courses/categories", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"categories":["Programming","Art"]}`, string(env.Data))

	code, _ = s.do(http.MethodGet, "/api/courses/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
