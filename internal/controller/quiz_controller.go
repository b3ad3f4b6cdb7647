package controller

import (
	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitQuizRequest defines model for quiz submission
// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	LessonID string           `json:"lesson_id"`
	Answers  []service.Answer `json:"answers"`
}

// GetLessonQuiz godoc
// @Summary 课时测验题
// @Description 返回题目和选项，不含正确答案
// @Tags 测验
// @Produce json
// @Param lessonId path string true "课时ID"
// @Success 200 {object} util.Response{data=service.LessonQuiz}
// @Failure 404 {object} util.Response
// @Router /api/quiz/lesson/{lessonId} [get]
func (c *QuizController) GetLessonQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetLessonQuiz(ctx.Request.Context(), ctx.Param("lessonId"))
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch quiz questions")
		return
	}
	util.Success(ctx, quiz)
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description 判分并记录进度，70 分及以上为完成
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SubmitQuizRequest true "作答"
// @Success 200 {object} util.Response{data=service.ScoreResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quiz/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err), "Failed to submit quiz")
		return
	}

	result, err := c.QuizService.Submit(ctx.Request.Context(), service.SubmitInput{
		UserID:   claims.UserID,
		LessonID: req.LessonID,
		Answers:  req.Answers,
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to submit quiz")
		return
	}

	util.SuccessWithMessage(ctx, c.QuizService.ResultMessage(*result), result)
}
