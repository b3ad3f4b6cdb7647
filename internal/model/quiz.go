package model

import "strings"

// OptionLetters 每道题固定四个选项
var OptionLetters = []string{"a", "b", "c", "d"}

// QuizQuestion 含正确答案，只在服务端和提交结果中使用
type QuizQuestion struct {
	ID            string `json:"id"`
	LessonID      string `json:"lesson_id"`
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

// PublicQuestion 提交前给学生看的题目，不含答案
type PublicQuestion struct {
	ID       string            `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

func (q QuizQuestion) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		Question: q.Question,
		Options: map[string]string{
			"a": q.OptionA,
			"b": q.OptionB,
			"c": q.OptionC,
			"d": q.OptionD,
		},
	}
}

// NormalizeAnswer 选项字母统一小写
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidAnswer(s string) bool {
	n := NormalizeAnswer(s)
	for _, l := range OptionLetters {
		if n == l {
			return true
		}
	}
	return false
}
