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

type CommentsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Progress *services.ProgressService
}

func NewCommentsController(db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService) *CommentsController {
	return &CommentsController{DB: db, Cfg: cfg, Log: log, Progress: progress}
}

// AddCommentRequest defines the request body for adding a comment
type AddCommentRequest struct {
	ArticleID uint   `json:"articleId" validate:"required" example:"1"`
	Content   string `json:"content" validate:"required,max=1000" example:"Very clear explanation of tenant rights."`
}

type ReplyRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type commentAuthor struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type replyView struct {
	ID        uint          `json:"id"`
	User      commentAuthor `json:"user"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
}

type commentView struct {
	ID        uint          `json:"id"`
	ArticleID uint          `json:"articleId"`
	User      commentAuthor `json:"user"`
	Content   string        `json:"content"`
	Likes     int           `json:"likes"`
	Replies   []replyView   `json:"replies"`
	CreatedAt time.Time     `json:"createdAt"`
}

func author(u *models.User, id uint) commentAuthor {
	if u == nil {
		return commentAuthor{ID: id}
	}
	return commentAuthor{ID: u.ID, Name: u.Name}
}

func toCommentView(cm *models.Comment) commentView {
	view := commentView{
		ID:        cm.ID,
		ArticleID: cm.ArticleID,
		User:      author(cm.User, cm.UserID),
		Content:   cm.Content,
		Likes:     len(cm.Likes),
		Replies:   make([]replyView, len(cm.Replies)),
		CreatedAt: cm.CreatedAt,
	}
	for i, r := range cm.Replies {
		view.Replies[i] = replyView{
			ID:        r.ID,
			User:      author(r.User, r.UserID),
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		}
	}
	return view
}

func withAuthors(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Likes")
}

func (cc *CommentsController) loadComment(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := withAuthors(cc.DB).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

// GetArticleComments godoc
// @Summary Get article comments
// @Description Returns all comments for an article, newest first
// @Tags comments
// @Produce json
// @Param articleId path int true "Article ID"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /comments/article/{articleId} [get]
func (cc *CommentsController) GetArticleComments(c *fiber.Ctx) error {
	articleID, err := parseID(c, "articleId")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}

	var comments []models.Comment
	err = withAuthors(cc.DB).
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return utils.Respond(c, cc.Log, err, "Could not fetch comments")
	}

	result := make([]commentView, len(comments))
	for i := range comments {
		result[i] = toCommentView(&comments[i])
	}
	return c.JSON(result)
}

// AddComment godoc
// @Summary Comment on an article
// @Description Creates the comment, then updates streak, today's comment count, the commenting challenge and achievements
// @Tags comments
// @Accept json
// @Produce json
// @Param input body AddCommentRequest true "Comment data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /comments [post]
func (cc *CommentsController) AddComment(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c)

	var input AddCommentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Content = strings.TrimSpace(input.Content)
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var article models.Article
	if err := cc.DB.Select("id").First(&article, input.ArticleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Article not found")
		}
		return utils.Respond(c, cc.Log, err, "Server error creating comment")
	}

	comment := models.Comment{
		ArticleID: input.ArticleID,
		UserID:    userID,
		Content:   input.Content,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.Respond(c, cc.Log, err, "Server error creating comment")
	}

	saved, err := cc.loadComment(comment.ID)
	if err != nil {
		return utils.Respond(c, cc.Log, err, "Server error creating comment")
	}
	body := fiber.Map{"comment": toCommentView(saved)}

	// The comment stands even when progress tracking fails.
	progress, err := cc.Progress.RecordComment(c.UserContext(), userID, comment.ID)
	if err != nil {
		cc.Log.Warn("comment progress update failed", "user_id", userID, "comment_id", comment.ID, "error", err)
	} else {
		body["gamification"] = progress
	}

	return utils.Created(c, body)
}

// LikeComment toggles the caller's like.
func (cc *CommentsController) LikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}
	userID := utils.CurrentUserID(c)

	var (
		liked bool
		likes int64
	)
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Comment not found")
			}
			return err
		}

		res := tx.Where("comment_id = ? AND user_id = ?", id, userID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.CommentLike{CommentID: id, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&models.CommentLike{}).Where("comment_id = ?", id).Count(&likes).Error
	})
	if err != nil {
		return utils.Respond(c, cc.Log, err, "Server error")
	}

	return c.JSON(fiber.Map{"likes": likes, "liked": liked})
}

func (cc *CommentsController) ReplyComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}
	userID := utils.CurrentUserID(c)

	var input ReplyRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Content = strings.TrimSpace(input.Content)
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var exists int64
	if err := cc.DB.Model(&models.Comment{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return utils.Respond(c, cc.Log, err, "Server error")
	}
	if exists == 0 {
		return utils.NotFound(c, "Comment not found")
	}

	reply := models.CommentReply{CommentID: id, UserID: userID, Content: input.Content}
	if err := cc.DB.Create(&reply).Error; err != nil {
		return utils.Respond(c, cc.Log, err, "Server error")
	}

	if _, err := cc.Progress.RecordActivity(c.UserContext(), userID); err != nil {
		cc.Log.Warn("reply streak update failed", "user_id", userID, "error", err)
	}

	comment, err := cc.loadComment(id)
	if err != nil {
		return utils.Respond(c, cc.Log, err, "Server error")
	}
	return c.JSON(toCommentView(comment))
}

// DeleteComment removes a comment with its replies and likes. Only the
// author or an admin may delete.
func (cc *CommentsController) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}
	userID := utils.CurrentUserID(c)

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Comment not found")
			}
			return err
		}

		if comment.UserID != userID {
			var caller models.User
			if err := tx.Select("id", "role").First(&caller, userID).Error; err != nil {
				return err
			}
			if !caller.IsAdmin() {
				return utils.ForbiddenError("Not authorized to delete this comment")
			}
		}

		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return utils.Respond(c, cc.Log, err, "Server error")
	}

	return utils.Message(c, "Comment deleted successfully")
}
