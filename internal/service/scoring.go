package service

import (
	"sheet_lms_backend/internal/model"
)

// DefaultPassThreshold 及格线（百分制）
const DefaultPassThreshold = 70

// Answer 一道题的作答
type Answer struct {
	QuizID         string `json:"quiz_id"`
	SelectedAnswer string `json:"selected_answer"`
}

// QuestionResult 单题判分结果，提交后才返回正确答案
type QuestionResult struct {
	QuizID         string `json:"quiz_id"`
	Question       string `json:"question"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

type ScoreResult struct {
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"totalQuestions"`
	CorrectAnswers int                  `json:"correctAnswers"`
	Status         model.ProgressStatus `json:"status"`
	Passed         bool                 `json:"passed"`
	Results        []QuestionResult     `json:"results"`
}

// ScoreQuiz 按课时全部题目判分。分母是题目总数而不是作答数，
// 未作答的题按错误处理；不属于该课时的 quiz_id 直接忽略。
// 同一题重复作答时每次都返回判分结果，但只有第一次计分。
func ScoreQuiz(questions []model.QuizQuestion, answers []Answer, passThreshold int) ScoreResult {
	byID := make(map[string]model.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	results := make([]QuestionResult, 0, len(answers))
	scored := make(map[string]bool, len(questions))
	correct := 0
	for _, a := range answers {
		q, ok := byID[a.QuizID]
		if !ok {
			continue
		}
		isCorrect := model.NormalizeAnswer(q.CorrectAnswer) == model.NormalizeAnswer(a.SelectedAnswer)
		if isCorrect && !scored[q.ID] {
			correct++
		}
		scored[q.ID] = true
		results = append(results, QuestionResult{
			QuizID:         a.QuizID,
			Question:       q.Question,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      isCorrect,
		})
	}

	score := Percent(correct, len(questions))
	status := model.Ongoing
	if score >= passThreshold {
		status = model.Completed
	}

	return ScoreResult{
		Score:          score,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		Status:         status,
		Passed:         status == model.Completed,
		Results:        results,
	}
}

// Percent part/total*100 四舍五入（0.5 进位），total 为 0 时返回 0
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
