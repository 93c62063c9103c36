package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	chatdomain "github.com/NotYuSheng/mernverse/domain/chat"
	"github.com/NotYuSheng/mernverse/modules/broadcast"
)

// handleWebSocket owns one connection's read loop. All outbound traffic
// goes through the hub's per-connection queue so the writer goroutine is
// the only thing touching the socket.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	connID := chatdomain.NewConnectionID()
	m.hub.Register(connID, c)
	limiter := newRateLimiter(m.messageBurst, m.messageRate)

	defer func() {
		m.engine.Disconnect(connID)
		m.hub.Unregister(connID)
		slog.Info("WebSocket disconnected", "connID", connID)
	}()

	slog.Info("WebSocket connected", "connID", connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket read error", "connID", connID, "error", err)
			}
			break
		}

		var frame ClientFrame
		if err := json.Unmarshal(msgBytes, &frame); err != nil {
			m.sendError(connID, broadcast.CodeMalformed, "invalid frame")
			continue
		}

		switch frame.Type {
		case FrameResolveIdentity:
			m.handleResolveIdentity(connID, frame)
		case FrameJoinRoom:
			m.handleJoinRoom(connID, frame)
		case FrameSendMessage:
			m.handleSendMessage(connID, frame, limiter)
		default:
			m.sendError(connID, broadcast.CodeMalformed, "unknown frame type: "+frame.Type)
		}
	}
}

func (m *Module) handleResolveIdentity(connID string, frame ClientFrame) {
	name, _ := m.engine.ResolveIdentity(connID, frame.SessionToken)
	m.hub.SendTo(connID, broadcast.Frame{
		Type:        broadcast.FrameIdentityAssigned,
		DisplayName: name,
	})
}

func (m *Module) handleJoinRoom(connID string, frame ClientFrame) {
	if err := m.engine.Join(connID, frame.RoomID); err != nil {
		m.sendError(connID, broadcast.CodeValidation, err.Error())
		return
	}
	m.hub.SendTo(connID, broadcast.Frame{
		Type:   broadcast.FrameRoomJoined,
		RoomID: frame.RoomID,
	})
}

func (m *Module) handleSendMessage(connID string, frame ClientFrame, limiter *rateLimiter) {
	if !limiter.allow() {
		m.sendError(connID, broadcast.CodeRateLimited, "slow down")
		return
	}

	_, err := m.engine.Submit(context.Background(), connID, frame.Body, frame.RoomID)
	if err == nil {
		return
	}

	// Failures go only to the submitting connection.
	var verr *chatdomain.ValidationError
	var perr *chatdomain.PersistenceError
	switch {
	case errors.As(err, &verr):
		m.sendError(connID, broadcast.CodeValidation, verr.Error())
	case errors.As(err, &perr):
		m.sendError(connID, broadcast.CodePersistence, "message could not be stored")
	default:
		m.sendError(connID, broadcast.CodePersistence, "message rejected")
	}
}

func (m *Module) sendError(connID, code, detail string) {
	m.hub.SendTo(connID, broadcast.Frame{
		Type:   broadcast.FrameError,
		Code:   code,
		Detail: detail,
	})
}

// REST handlers

// getHistory handles GET /messages/:roomId, the read-only pass-through
// to the message store.
func (m *Module) getHistory(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room ID is required",
		})
	}

	messages, err := m.engine.History(c.UserContext(), roomID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list messages",
		})
	}

	return c.JSON(HistoryResponse{
		RoomID:   roomID,
		Messages: messages,
		Total:    len(messages),
	})
}

// createRoom handles POST /api/v1/rooms. Rooms are never registered;
// minting an id is all creation means.
func (m *Module) createRoom(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(RoomResponse{
		RoomID: chatdomain.NewRoomID(),
	})
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "mernverse",
		"details": fiber.Map{
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      m.hub.RoomCount(),
		},
	})
}
