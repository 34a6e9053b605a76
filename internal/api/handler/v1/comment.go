package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dvega-dev/community-events-api/internal/api/handler/v1/request"
	"github.com/dvega-dev/community-events-api/internal/api/handler/v1/response"
	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/service"
)

type RatingService interface {
	AddComment(ctx context.Context, eventID uint, author domain.User, body string, rating int) (domain.Comment, error)
	ListComments(ctx context.Context, eventID uint) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, eventID, commentID, userID uint) error
}

type CommentHandler struct {
	svc  RatingService
	uSvc UserService
}

func NewCommentHandler(svc RatingService, uSvc UserService) *CommentHandler {
	return &CommentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListComments godoc
// @Summary      List comments on an event
// @Tags         comments
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {array}   domain.Comment
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/comments [get]
// @Security     BearerAuth
func (h *CommentHandler) HandleListComments(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	comments, err := h.svc.ListComments(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListComments -> h.svc.ListComments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, comments)
}

// HandleCreateComment godoc
// @Summary      Comment on and rate a past event
// @Description  Only participants may comment, once per event, after the event has ended
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                          true  "Event ID"
// @Param        input    body      request.CreateCommentRequest true  "Comment details"
// @Success      201  {object}  domain.Comment
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/comments [post]
// @Security     BearerAuth
func (h *CommentHandler) HandleCreateComment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	comment, err := h.svc.AddComment(ctx.Request.Context(), eventID, user, input.Body, input.Rating)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrBodyRequired), errors.Is(err, service.ErrRatingRange),
			errors.Is(err, service.ErrEventNotEnded):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotParticipant):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotParticipant))
		case errors.Is(err, service.ErrCommentExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrCommentExists))
		default:
			err = fmt.Errorf("v1.HandleCreateComment -> h.svc.AddComment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, comment)
}

// HandleDeleteComment godoc
// @Summary      Delete one's own comment
// @Tags         comments
// @Produce      json
// @Param        eventID    path      int  true  "Event ID"
// @Param        commentID  path      int  true  "Comment ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/comments/{commentID} [delete]
// @Security     BearerAuth
func (h *CommentHandler) HandleDeleteComment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	commentID, err := strconv.ParseUint(ctx.Param("commentID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid comment ID: %w", err)))
		return
	}

	if err := h.svc.DeleteComment(ctx.Request.Context(), eventID, uint(commentID), user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("comment", "ID", commentID))
		case errors.Is(err, service.ErrNotCommentOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotCommentOwner))
		default:
			err = fmt.Errorf("v1.HandleDeleteComment -> h.svc.DeleteComment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
