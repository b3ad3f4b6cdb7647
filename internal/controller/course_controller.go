package controller

import (
	"path/filepath"
	"strconv"
	"strings"

	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// CreateCourseRequest defines model for course creation
// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Thumbnail   string `json:"thumbnail"`
}

// AddModuleRequest defines model for adding a module
// swagger:model AddModuleRequest
type AddModuleRequest struct {
	Title string `json:"title" binding:"required"`
	Order int    `json:"order" binding:"omitempty,min=1"`
}

func queryInt(ctx *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return def
	}
	return v
}

func userIDOf(ctx *gin.Context) string {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// ListCourses godoc
// @Summary 课程列表
// @Description 按分类过滤（不区分大小写）并分页
// @Tags 课程
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=service.CourseList}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	list, err := c.CourseService.List(ctx.Request.Context(), service.ListCoursesQuery{
		Page:     queryInt(ctx, "page", util.DefaultPage),
		Limit:    queryInt(ctx, "limit", util.DefaultLimit),
		Category: ctx.Query("category"),
	})
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch courses")
		return
	}
	util.Success(ctx, list)
}

// GetCategories godoc
// @Summary 课程分类
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses/categories [get]
func (c *CourseController) GetCategories(ctx *gin.Context) {
	categories, err := c.CourseService.Categories(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch categories")
		return
	}
	util.Success(ctx, gin.H{"categories": categories})
}

// GetCourse godoc
// @Summary 课程详情
// @Description 包含按顺序排列的章节和课时，登录用户附带个人进度
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	detail, err := c.CourseService.Detail(ctx.Request.Context(), ctx.Param("id"), userIDOf(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch course")
		return
	}
	util.Success(ctx, detail)
}

// CreateCourse godoc
// @Summary 创建课程（讲师/管理员）
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err), "Failed to create course")
		return
	}

	course, err := c.CourseService.Create(ctx.Request.Context(), service.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
	}, userIDOf(ctx))
	if err != nil {
		util.HandleError(ctx, err, "Failed to create course")
		return
	}
	util.Created(ctx, "Course created successfully", gin.H{"course": course})
}

// AddModule godoc
// @Summary 为课程添加章节（讲师/管理员）
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param body body AddModuleRequest true "章节信息"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	var req AddModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err), "Failed to add module")
		return
	}

	module, err := c.CourseService.AddModule(ctx.Request.Context(), ctx.Param("id"), req.Title, req.Order)
	if err != nil {
		util.HandleError(ctx, err, "Failed to add module")
		return
	}
	util.Created(ctx, "Module added successfully", gin.H{"module": module})
}

// UploadThumbnail godoc
// @Summary 上传课程封面（讲师/管理员）
// @Tags 课程
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程ID"
// @Param file formData file true "封面图片"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.HandleError(ctx, util.FieldError("file", "File is required"), "Failed to upload thumbnail")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		util.HandleError(ctx, util.FieldError("file", "Unsupported file type"), "Failed to upload thumbnail")
		return
	}
	if file.Size > util.MaxThumbnailSize {
		util.HandleError(ctx, util.FieldError("file", "File is too large"), "Failed to upload thumbnail")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.HandleError(ctx, err, "Failed to upload thumbnail")
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, util.MimeImage) {
		contentType = "application/octet-stream"
	}

	course, err := c.CourseService.UploadThumbnail(ctx.Request.Context(), ctx.Param("id"), ext, src, file.Size, contentType)
	if err != nil {
		util.HandleError(ctx, err, "Failed to upload thumbnail")
		return
	}
	util.SuccessWithMessage(ctx, "Thumbnail uploaded successfully", gin.H{"course": course})
}
