package service

import (
	"sheet_lms_backend/internal/model"
)

// LessonProgressOf 课时没有进度记录时视为未开始
func LessonProgressOf(progress map[string]model.Progress, lessonID string) model.LessonProgress {
	p, ok := progress[lessonID]
	if !ok {
		return model.LessonProgress{Status: model.NotStarted, Score: 0}
	}
	return model.LessonProgress{Score: p.Score, Status: p.Status, UpdatedAt: p.UpdatedAt}
}

// ProgressByLesson 按课时建立索引。同一课时出现多行时保留最后一行。
func ProgressByLesson(rows []model.Progress) map[string]model.Progress {
	out := make(map[string]model.Progress, len(rows))
	for _, p := range rows {
		out[p.LessonID] = p
	}
	return out
}

// ModuleCompletion 章节内已完成课时数，以及是否整章完成（至少一个课时且全部完成）
func ModuleCompletion(lessons []model.Lesson, progress map[string]model.Progress) (completed int, isCompleted bool) {
	for _, l := range lessons {
		if LessonProgressOf(progress, l.ID).Status == model.Completed {
			completed++
		}
	}
	return completed, len(lessons) > 0 && completed == len(lessons)
}

// CompletedLessons 统计课程内已完成的不同课时数
func CompletedLessons(lessons []model.Lesson, progress map[string]model.Progress) int {
	seen := make(map[string]struct{}, len(lessons))
	n := 0
	for _, l := range lessons {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		if LessonProgressOf(progress, l.ID).Status == model.Completed {
			n++
		}
	}
	return n
}

// CompletionPercentage 没有课时时为 0
func CompletionPercentage(completed, total int) int {
	return Percent(completed, total)
}

// AverageScore 所有进度行分数的平均值，四舍五入；没有记录时为 0
func AverageScore(rows []model.Progress) int {
	if len(rows) == 0 {
		return 0
	}
	sum := 0
	for _, p := range rows {
		sum += p.Score
	}
	n := len(rows)
	return (2*sum + n) / (2 * n)
}

func CountStatus(rows []model.Progress, status model.ProgressStatus) int {
	n := 0
	for _, p := range rows {
		if p.Status == status {
			n++
		}
	}
	return n
}
