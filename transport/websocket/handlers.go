package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

// Payload is used both for requests and responses.
type Payload struct {
	SessionID string              `json:"session_id,omitempty"`
	Position  *int                `json:"position,omitempty"`
	Session   *entity.SessionView `json:"session,omitempty"`
	Stats     *entity.Stats       `json:"stats,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// handleConnect resumes the session named in the payload, or creates one when
// it is missing or has expired.
func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if payloadReq.SessionID != "" {
		session, err := that.manager.GetSession(ctx, payloadReq.SessionID)
		if err == nil {
			log.Info("session resumed", "sessionID", session.ID)
			return that.sendMessage(conn, msg.Action, Payload{Session: session})
		}

		if !errors.Is(err, apperror.ErrNotFound) {
			log.Error("failed to get session", "sessionID", payloadReq.SessionID, "error", err)
			return that.sendErrorResponse(conn, msg.Action, "failed to get the session")
		}
	}

	session, err := that.manager.CreateSession(ctx)
	if err != nil {
		log.Error("failed to create session", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new session")
	}

	return that.sendMessage(conn, msg.Action, Payload{Session: session})
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if payloadReq.SessionID == "" {
		return that.sendErrorResponse(conn, msg.Action, "session_id is required")
	}

	if payloadReq.Position == nil {
		return that.sendErrorResponse(conn, msg.Action, "position is required")
	}

	session, err := that.manager.PlayTurn(ctx, payloadReq.SessionID, *payloadReq.Position)
	switch {
	case err == nil:
		return that.sendMessage(conn, msg.Action, Payload{Session: session})
	case errors.Is(err, apperror.ErrGameFinished):
		return that.sendMessage(conn, msg.Action, Payload{Session: session, Error: err.Error()})
	case errors.Is(err, apperror.ErrNotFound),
		errors.Is(err, tictactoe.ErrInvalidPosition),
		errors.Is(err, tictactoe.ErrCellOccupied):
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	default:
		log.Error("failed to make turn", "sessionID", payloadReq.SessionID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to make turn")
	}
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	session, err := that.manager.NewGame(ctx, payloadReq.SessionID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	return that.sendMessage(conn, msg.Action, Payload{Session: session})
}

func (that *Server) handleTournamentStats(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	session, err := that.manager.GetSession(ctx, payloadReq.SessionID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	return that.sendMessage(conn, msg.Action, Payload{SessionID: session.ID, Stats: &session.Stats})
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, errors.New("invalid payload")
	}

	return &payload, nil
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
