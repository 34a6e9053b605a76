package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type WatchHandler struct {
	querySvc EventQueryService
	uSvc     UserService
}

func NewWatchHandler(querySvc EventQueryService, uSvc UserService) *WatchHandler {
	return &WatchHandler{
		querySvc: querySvc,
		uSvc:     uSvc,
	}
}

// HandleWatchEvents godoc
// @Summary      Stream event changes over a WebSocket
// @Description  Pushes a JSON message whenever an event is created, updated or deleted
// @Tags         events
// @Produce      json
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      401  {object}  response.Err
// @Router       /events/watch [get]
// @Security     BearerAuth
func (h *WatchHandler) HandleWatchEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		ctx.AbortWithStatusJSON(respErr.StatusCode, respErr)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.querySvc.Watch()

	// Reading drains control frames and detects the peer closing. Either
	// side ending tears the whole connection down.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case change, ok := <-sub.C:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			change.Event.IsParticipant = change.Event.HasParticipant(user.ID)
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
