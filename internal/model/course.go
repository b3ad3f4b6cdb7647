package model

type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Thumbnail    string `json:"thumbnail"`
	InstructorID string `json:"instructor_id"`
	CreatedAt    string `json:"created_at"`
}

// Module 课程下的章节，Order 用于同级排序
type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

type Lesson struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
	Summary  string `json:"summary"`
	Order    int    `json:"order"`
}

// Summary 嵌入其他响应时使用的精简信息
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
