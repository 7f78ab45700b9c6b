package controllers

import (
	"errors"
	"strings"
	"time"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ArticleController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Progress *services.ProgressService
}

func NewArticleController(db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService) *ArticleController {
	return &ArticleController{DB: db, Cfg: cfg, Log: log, Progress: progress}
}

type ArticleRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Content   string   `json:"content" validate:"required"`
	Summary   string   `json:"summary" validate:"required,max=500"`
	Category  string   `json:"category" validate:"required,article_category"`
	Tags      []string `json:"tags"`
	Author    string   `json:"author"`
	ImageURL  string   `json:"imageUrl" validate:"omitempty,url"`
	ReadTime  int      `json:"readTime" validate:"gte=0"`
	Published *bool    `json:"published"`
}

type ArticleUpdateRequest struct {
	Title     *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content   *string   `json:"content" validate:"omitempty,min=1"`
	Summary   *string   `json:"summary" validate:"omitempty,min=1,max=500"`
	Category  *string   `json:"category" validate:"omitempty,article_category"`
	Tags      *[]string `json:"tags"`
	Author    *string   `json:"author"`
	ImageURL  *string   `json:"imageUrl" validate:"omitempty,url"`
	ReadTime  *int      `json:"readTime" validate:"omitempty,gte=0"`
	Published *bool     `json:"published"`
}

// GetArticles godoc
// @Summary List published articles
// @Tags articles
// @Produce json
// @Param category query string false "Category, All for every category"
// @Param search query string false "Search in title and summary"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /articles [get]
func (ac *ArticleController) GetArticles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := ac.DB.Model(&models.Article{}).Where("published = ?", true)

	if category := c.Query("category"); category != "" && category != "All" {
		query = query.Where("category = ?", category)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Server error fetching articles")
	}

	articles := []models.Article{}
	err := query.Order("published_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return utils.Respond(c, ac.Log, err, "Server error fetching articles")
	}

	return utils.Paginate(c, "articles", articles, total, page, limit)
}

// GetArticle godoc
// @Summary Get an article
// @Description Returns one article and counts the view
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} models.Article
// @Failure 404 {object} utils.ErrorResponse
// @Router /articles/{id} [get]
func (ac *ArticleController) GetArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var article models.Article
	if err := ac.DB.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Article not found")
		}
		return utils.Respond(c, ac.Log, err, "Server error fetching article")
	}

	if err := ac.DB.Model(&article).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		ac.Log.Warn("view count update failed", "article_id", id, "error", err)
	} else {
		article.Views++
	}

	return c.JSON(article)
}

// MarkRead godoc
// @Summary Mark an article as read
// @Description Updates the reading streak, today's reading count and the reading challenge
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} services.ReadResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /articles/{id}/read [post]
func (ac *ArticleController) MarkRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	result, err := ac.Progress.RecordArticleRead(c.UserContext(), utils.CurrentUserID(c), id)
	if err != nil {
		return utils.Respond(c, ac.Log, err, "Server error tracking article")
	}
	return c.JSON(result)
}

func (ac *ArticleController) LikeArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	res := ac.DB.Model(&models.Article{}).Where("id = ?", id).UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return utils.Respond(c, ac.Log, res.Error, "Server error")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Article not found")
	}

	var article models.Article
	if err := ac.DB.Select("id", "likes").First(&article, id).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Server error")
	}
	return c.JSON(fiber.Map{"likes": article.Likes})
}

// CreateArticle godoc
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Param article body ArticleRequest true "Article"
// @Success 201 {object} models.Article
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /articles [post]
func (ac *ArticleController) CreateArticle(c *fiber.Ctx) error {
	var input ArticleRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	article := models.Article{
		Title:     input.Title,
		Content:   input.Content,
		Summary:   input.Summary,
		Category:  input.Category,
		Tags:      input.Tags,
		Author:    input.Author,
		ImageURL:  input.ImageURL,
		ReadTime:  input.ReadTime,
		Published: input.Published == nil || *input.Published,
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}

	if err := ac.DB.Create(&article).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Server error creating article")
	}
	return utils.Created(c, article)
}

func (ac *ArticleController) UpdateArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var input ArticleUpdateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var article models.Article
	if err := ac.DB.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Article not found")
		}
		return utils.Respond(c, ac.Log, err, "Server error updating article")
	}

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Summary != nil {
		article.Summary = *input.Summary
	}
	if input.Category != nil {
		article.Category = *input.Category
	}
	if input.Tags != nil {
		article.Tags = *input.Tags
	}
	if input.Author != nil {
		article.Author = *input.Author
	}
	if input.ImageURL != nil {
		article.ImageURL = *input.ImageURL
	}
	if input.ReadTime != nil {
		article.ReadTime = *input.ReadTime
	}
	if input.Published != nil {
		article.Published = *input.Published
	}
	article.UpdatedAt = time.Now()

	if err := ac.DB.Save(&article).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Server error updating article")
	}
	return c.JSON(article)
}

func (ac *ArticleController) DeleteArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	res := ac.DB.Delete(&models.Article{}, id)
	if res.Error != nil {
		return utils.Respond(c, ac.Log, res.Error, "Server error deleting article")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Article not found")
	}
	return utils.Message(c, "Article deleted successfully")
}
