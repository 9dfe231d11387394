package handler

import (
	"net/http"

	"acadex.dev/acadex/internal/middleware"
	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications service.NotificationService
	upgrader      websocket.Upgrader
	log           *zap.Logger
}

func NewNotificationHandler(notifications service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		log:           log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	user := middleware.CurrentUser(c)

	notifications, total, err := h.notifications.List(c.Request.Context(), user.ID, c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"notifications": notifications, "total": total})
}

func (h *NotificationHandler) ReadOne(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) UnreadOne(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkUnread(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "notification marked as unread"})
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

func (h *NotificationHandler) UnreadAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkAllUnread(c.Request.Context(), user.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "all notifications marked as unread"})
}

// Stream upgrades to a websocket and forwards the user's notification
// channel until either side disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	user := middleware.CurrentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	pubsub := h.notifications.Subscribe(c.Request.Context(), user.ID)
	defer pubsub.Close()

	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		h.log.Warn("notification channel subscribe failed", zap.Error(err))
		return
	}
	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
