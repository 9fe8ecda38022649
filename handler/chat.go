package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/errs"
	"stream-service/middleware"
	"stream-service/pkg/token"
	"stream-service/pkg/ws"
	"stream-service/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type ChatHandler struct {
	svc    service.ChatService
	hub    *ws.Hub
	signer *token.Signer
}

func NewChatHandler(svc service.ChatService, hub *ws.Hub, signer *token.Signer) *ChatHandler {
	return &ChatHandler{svc: svc, hub: hub, signer: signer}
}

func (h *ChatHandler) History(c *gin.Context) {
	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stream id"})
		return
	}

	messages, err := h.svc.History(c.Request.Context(), streamID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) Send(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrUnauthorized.Error()})
		return
	}

	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stream id"})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), identity, streamID, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Subscribe attaches a websocket feed to a session's chat, or to the lobby
// when stream_id is omitted. Existing messages are delivered as one history
// frame, then live events from the subscription point onward. A dropped
// connection misses any gap; the client simply re-subscribes.
func (h *ChatHandler) Subscribe(c *gin.Context) {
	// Browsers cannot set headers on websocket dials; the credential
	// travels as a query parameter here.
	if _, err := h.signer.Verify(c.Query("token")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unauthorized"})
		return
	}

	topic := constant.LobbyTopic
	var history *dto.ChatHistory
	if raw := c.Query("stream_id"); raw != "" {
		streamID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stream id"})
			return
		}
		messages, err := h.svc.History(c.Request.Context(), streamID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		topic = streamID.String()
		history = &dto.ChatHistory{
			Type:     "history",
			StreamID: topic,
			Messages: messages,
		}
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub, cancel := h.hub.Subscribe(topic)
	defer cancel()

	if history != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(history); err != nil {
			conn.Close()
			return
		}
	}

	go readLoop(conn, cancel)
	writeLoop(conn, sub)
}

// readLoop drains the connection so close frames are processed, and tears
// the subscription down when the peer goes away.
func readLoop(conn *websocket.Conn, cancel func()) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeLoop(conn *websocket.Conn, sub *ws.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
