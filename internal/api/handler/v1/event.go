package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dvega-dev/community-events-api/internal/api/handler/v1/request"
	"github.com/dvega-dev/community-events-api/internal/api/handler/v1/response"
	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/service"
)

type EventService interface {
	Create(ctx context.Context, draft service.EventDraft, organizer domain.User) (domain.Event, error)
	Get(ctx context.Context, eventID, viewerID uint) (domain.Event, error)
	Update(ctx context.Context, eventID, userID uint, draft service.EventDraft) (domain.Event, error)
	Delete(ctx context.Context, eventID, userID uint) error
}

type EnrollmentService interface {
	Join(ctx context.Context, eventID, userID uint) (domain.Event, error)
	Leave(ctx context.Context, eventID, userID uint) (domain.Event, error)
}

type EventQueryService interface {
	Upcoming(ctx context.Context, viewerID uint) ([]domain.Event, error)
	Past(ctx context.Context, viewerID uint) ([]domain.Event, error)
	Mine(ctx context.Context, userID uint) ([]domain.Event, error)
	Watch() *service.Subscription
}

type EventHandler struct {
	svc       EventService
	enrollSvc EnrollmentService
	querySvc  EventQueryService
	uSvc      UserService
}

func NewEventHandler(svc EventService, enrollSvc EnrollmentService, querySvc EventQueryService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:       svc,
		enrollSvc: enrollSvc,
		querySvc:  querySvc,
		uSvc:      uSvc,
	}
}

func parseEventID(ctx *gin.Context) (uint, *response.Err) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err))
	}

	return uint(eventID), nil
}

func isDraftValidationErr(err error) bool {
	return errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrCategoryUnknown) ||
		errors.Is(err, service.ErrCapacityInvalid) ||
		errors.Is(err, service.ErrScheduleRequired)
}

func draftFromRequest(title, description, location, category, scheduledAt string, maxParticipants int) (service.EventDraft, error) {
	parsed, err := time.Parse(request.ScheduledAtLayout, scheduledAt)
	if err != nil {
		return service.EventDraft{}, fmt.Errorf("invalid date format: %w", err)
	}

	return service.EventDraft{
		Title:           title,
		Description:     description,
		Location:        location,
		Category:        category,
		ScheduledAt:     parsed,
		MaxParticipants: maxParticipants,
	}, nil
}

// HandleListUpcoming godoc
// @Summary      List upcoming events
// @Description  Events that have not started yet, soonest first
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListUpcoming(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.querySvc.Upcoming(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListUpcoming -> h.querySvc.Upcoming -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListPast godoc
// @Summary      List past events
// @Description  Events whose scheduled time has passed, most recent first
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/past [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListPast(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.querySvc.Past(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListPast -> h.querySvc.Past -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListMine godoc
// @Summary      List events organized by the authenticated user
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/mine [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListMine(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.querySvc.Mine(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMine -> h.querySvc.Mine -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetCategories godoc
// @Summary      List the event category catalog
// @Tags         events
// @Produce      json
// @Success      200  {array}  string
// @Router       /events/categories [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetCategories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, domain.Categories)
}

// HandleCreateEvent godoc
// @Summary      Create a new event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	draft, err := draftFromRequest(input.Title, input.Description, input.Location,
		input.Category, input.ScheduledAt, input.MaxParticipants)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Create(ctx.Request.Context(), draft, user)
	if err != nil {
		if isDraftValidationErr(err) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleGetEvent godoc
// @Summary      Get a single event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
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

	event, err := h.svc.Get(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleUpdateEvent godoc
// @Summary      Edit an event
// @Description  Only the organizer may edit. Capacity cannot drop below current enrollment.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        input    body      request.UpdateEventRequest  true  "Event details"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
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

	var input request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	draft, err := draftFromRequest(input.Title, input.Description, input.Location,
		input.Category, input.ScheduledAt, input.MaxParticipants)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Update(ctx.Request.Context(), eventID, user.ID, draft)
	if err != nil {
		switch {
		case isDraftValidationErr(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))
		case errors.Is(err, service.ErrCapacityBelowEnrolled):
			response.RenderErr(ctx, response.ErrConflict(service.ErrCapacityBelowEnrolled))
		case errors.Is(err, service.ErrTransactConflict):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTransactConflict))
		case errors.Is(err, service.ErrTransactTimeout):
			response.RenderErr(ctx, response.ErrServiceUnavailable(service.ErrTransactTimeout))
		default:
			err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Only the organizer may delete
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
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

	if err := h.svc.Delete(ctx.Request.Context(), eventID, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))
		default:
			err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleJoinEvent godoc
// @Summary      Join an event
// @Description  Enrolls the authenticated user while the event has free capacity
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /events/{eventID}/join [post]
// @Security     BearerAuth
func (h *EventHandler) HandleJoinEvent(ctx *gin.Context) {
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

	event, err := h.enrollSvc.Join(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrAlreadyEnrolled):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyEnrolled))
		case errors.Is(err, service.ErrEventFull):
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventFull))
		case errors.Is(err, service.ErrTransactConflict):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTransactConflict))
		case errors.Is(err, service.ErrTransactTimeout):
			response.RenderErr(ctx, response.ErrServiceUnavailable(service.ErrTransactTimeout))
		default:
			err = fmt.Errorf("v1.HandleJoinEvent -> h.enrollSvc.Join -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	event.IsParticipant = true
	ctx.JSON(http.StatusOK, event)
}

// HandleLeaveEvent godoc
// @Summary      Leave an event
// @Description  Withdraws the authenticated user; leaving an event the user never joined is a no-op
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /events/{eventID}/leave [post]
// @Security     BearerAuth
func (h *EventHandler) HandleLeaveEvent(ctx *gin.Context) {
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

	event, err := h.enrollSvc.Leave(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrTransactConflict):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTransactConflict))
		case errors.Is(err, service.ErrTransactTimeout):
			response.RenderErr(ctx, response.ErrServiceUnavailable(service.ErrTransactTimeout))
		default:
			err = fmt.Errorf("v1.HandleLeaveEvent -> h.enrollSvc.Leave -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}
