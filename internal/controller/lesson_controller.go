package controller

import (
	"strconv"

	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// CreateLessonRequest defines model for lesson creation
// swagger:model CreateLessonRequest
type CreateLessonRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
	Title    string `json:"title" binding:"required"`
	VideoURL string `json:"video_url" binding:"required"`
	Summary  string `json:"summary"`
	Order    int    `json:"order" binding:"omitempty,min=1"`
}

// AddQuizzesRequest defines model for adding quiz questions
// swagger:model AddQuizzesRequest
type AddQuizzesRequest struct {
	Questions []service.QuizInput `json:"questions" binding:"required,min=1"`
}

// GetLesson godoc
// @Summary 课时详情
// @Description 含题目（不含答案）、登录用户的进度和同章节前后课时
// @Tags 课时
// @Produce json
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response{data=service.LessonDetail}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	detail, err := c.LessonService.Detail(ctx.Request.Context(), ctx.Param("id"), userIDOf(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch lesson")
		return
	}
	util.Success(ctx, detail)
}

// CreateLesson godoc
// @Summary 创建课时（讲师/管理员）
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateLessonRequest true "课时信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/lessons [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	var req CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err), "Failed to create lesson")
		return
	}

	lesson, err := c.LessonService.Create(ctx.Request.Context(), service.CreateLessonInput{
		ModuleID: req.ModuleID,
		Title:    req.Title,
		VideoURL: req.VideoURL,
		Summary:  req.Summary,
		Order:    req.Order,
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to create lesson")
		return
	}
	util.Created(ctx, "Lesson created successfully", gin.H{"lesson": lesson})
}

// AddQuizzes godoc
// @Summary 为课时添加测验题（讲师/管理员）
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Param body body AddQuizzesRequest true "题目列表"
// @Success 201 {object} util.Response
// @Router /api/lessons/{id}/quizzes [post]
func (c *LessonController) AddQuizzes(ctx *gin.Context) {
	var req AddQuizzesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err), "Failed to add quiz questions")
		return
	}

	created, err := c.LessonService.AddQuizzes(ctx.Request.Context(), ctx.Param("id"), req.Questions)
	if err != nil {
		util.HandleError(ctx, err, "Failed to add quiz questions")
		return
	}
	util.Created(ctx, strconv.Itoa(len(created))+" quiz questions added successfully", gin.H{"quizzes": created})
}
