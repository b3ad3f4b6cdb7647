package model

type ProgressStatus string

const (
	NotStarted ProgressStatus = "not_started"
	Ongoing    ProgressStatus = "ongoing"
	Completed  ProgressStatus = "completed"
)

// Progress 用户在某一课时的测验进度，(UserID, LessonID) 唯一
type Progress struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	LessonID  string         `json:"lesson_id"`
	Score     int            `json:"score"`
	Status    ProgressStatus `json:"status"`
	UpdatedAt string         `json:"updated_at"`
}

// LessonProgress 课时进度视图，没有记录时为 not_started / 0
type LessonProgress struct {
	Score     int            `json:"score"`
	Status    ProgressStatus `json:"status"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}
