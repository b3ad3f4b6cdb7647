package repository

import (
	"strconv"
	"strings"

	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/internal/sheet"
)

// 表名与缓存前缀
const (
	SheetUsers    = "Users"
	SheetCourses  = "Courses"
	SheetModules  = "Modules"
	SheetLessons  = "Lessons"
	SheetQuizzes  = "Quizzes"
	SheetProgress = "User_Progress"
)

// Schema 描述一种实体在表格中的固定列顺序，以及与结构体之间的转换。
// 新增列只能追加在末尾，旧行缺少的单元格按空字符串解析。
type Schema[T any] struct {
	Table       string
	CachePrefix string
	Columns     []string
	Decode      func(sheet.Record) T
	Encode      func(T) []string
}

// Column 返回列在表头中的下标
func (s Schema[T]) Column(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// TableDef 不带类型参数的表定义，用于初始化表头
type TableDef struct {
	Table   string
	Columns []string
}

// Registry 所有实体表，顺序即初始化顺序
func Registry() []TableDef {
	return []TableDef{
		{UserSchema.Table, UserSchema.Columns},
		{CourseSchema.Table, CourseSchema.Columns},
		{ModuleSchema.Table, ModuleSchema.Columns},
		{LessonSchema.Table, LessonSchema.Columns},
		{QuizSchema.Table, QuizSchema.Columns},
		{ProgressSchema.Table, ProgressSchema.Columns},
	}
}

// parseInt 文本转整数，无法解析时返回 0
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

var UserSchema = Schema[model.User]{
	Table:       SheetUsers,
	CachePrefix: "users",
	Columns:     []string{"id", "name", "email", "password_hash", "role", "created_at"},
	Decode: func(r sheet.Record) model.User {
		return model.User{
			ID:           r.Get("id"),
			Name:         r.Get("name"),
			Email:        r.Get("email"),
			PasswordHash: r.Get("password_hash"),
			Role:         model.UserRole(r.Get("role")),
			CreatedAt:    r.Get("created_at"),
		}
	},
	Encode: func(u model.User) []string {
		return []string{u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt}
	},
}

var CourseSchema = Schema[model.Course]{
	Table:       SheetCourses,
	CachePrefix: "courses",
	Columns:     []string{"id", "title", "description", "category", "thumbnail", "instructor_id", "created_at"},
	Decode: func(r sheet.Record) model.Course {
		return model.Course{
			ID:           r.Get("id"),
			Title:        r.Get("title"),
			Description:  r.Get("description"),
			Category:     r.Get("category"),
			Thumbnail:    r.Get("thumbnail"),
			InstructorID: r.Get("instructor_id"),
			CreatedAt:    r.Get("created_at"),
		}
	},
	Encode: func(c model.Course) []string {
		return []string{c.ID, c.Title, c.Description, c.Category, c.Thumbnail, c.InstructorID, c.CreatedAt}
	},
}

var ModuleSchema = Schema[model.Module]{
	Table:       SheetModules,
	CachePrefix: "modules",
	Columns:     []string{"id", "course_id", "title", "order"},
	Decode: func(r sheet.Record) model.Module {
		return model.Module{
			ID:       r.Get("id"),
			CourseID: r.Get("course_id"),
			Title:    r.Get("title"),
			Order:    parseInt(r.Get("order")),
		}
	},
	Encode: func(m model.Module) []string {
		return []string{m.ID, m.CourseID, m.Title, strconv.Itoa(m.Order)}
	},
}

var LessonSchema = Schema[model.Lesson]{
	Table:       SheetLessons,
	CachePrefix: "lessons",
	Columns:     []string{"id", "module_id", "title", "video_url", "summary", "order"},
	Decode: func(r sheet.Record) model.Lesson {
		return model.Lesson{
			ID:       r.Get("id"),
			ModuleID: r.Get("module_id"),
			Title:    r.Get("title"),
			VideoURL: r.Get("video_url"),
			Summary:  r.Get("summary"),
			Order:    parseInt(r.Get("order")),
		}
	},
	Encode: func(l model.Lesson) []string {
		return []string{l.ID, l.ModuleID, l.Title, l.VideoURL, l.Summary, strconv.Itoa(l.Order)}
	},
}

var QuizSchema = Schema[model.QuizQuestion]{
	Table:       SheetQuizzes,
	CachePrefix: "quizzes",
	Columns:     []string{"id", "lesson_id", "question", "option_a", "option_b", "option_c", "option_d", "correct_answer"},
	Decode: func(r sheet.Record) model.QuizQuestion {
		return model.QuizQuestion{
			ID:            r.Get("id"),
			LessonID:      r.Get("lesson_id"),
			Question:      r.Get("question"),
			OptionA:       r.Get("option_a"),
			OptionB:       r.Get("option_b"),
			OptionC:       r.Get("option_c"),
			OptionD:       r.Get("option_d"),
			CorrectAnswer: r.Get("correct_answer"),
		}
	},
	Encode: func(q model.QuizQuestion) []string {
		return []string{
			q.ID, q.LessonID, q.Question,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD,
			model.NormalizeAnswer(q.CorrectAnswer),
		}
	},
}

var ProgressSchema = Schema[model.Progress]{
	Table:       SheetProgress,
	CachePrefix: "progress",
	Columns:     []string{"id", "user_id", "lesson_id", "score", "status", "updated_at"},
	Decode: func(r sheet.Record) model.Progress {
		return model.Progress{
			ID:        r.Get("id"),
			UserID:    r.Get("user_id"),
			LessonID:  r.Get("lesson_id"),
			Score:     parseInt(r.Get("score")),
			Status:    model.ProgressStatus(r.Get("status")),
			UpdatedAt: r.Get("updated_at"),
		}
	},
	Encode: func(p model.Progress) []string {
		return []string{p.ID, p.UserID, p.LessonID, strconv.Itoa(p.Score), string(p.Status), p.UpdatedAt}
	},
}
