package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	actionConnect         = "connect"
	actionGameTurn        = "game:turn"
	actionGameNew         = "game:new"
	actionTournamentStats = "tournament:stats"
	actionError           = "error"
)

const (
	maxMessageSize  = 64 << 10
	shutdownTimeout = 5 * time.Second
)

type gameManager interface {
	CreateSession(ctx context.Context) (*entity.SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionView, error)
	PlayTurn(ctx context.Context, sessionID string, position int) (*entity.SessionView, error)
	NewGame(ctx context.Context, sessionID string) (*entity.SessionView, error)
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type handlerFunc func(ctx context.Context, message *Message, conn *websocket.Conn) error

type Server struct {
	logger   *slog.Logger
	manager  gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionTournamentStats] = server.handleTournamentStats

	return server
}

// Handler serves the WebSocket endpoint on /ws. Connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	// the upgrader has already answered the client on failure
	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	log.Info("WebSocket connection established", "remoteAddr", conn.RemoteAddr().String())

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Debug("connection closed", "error", err)
				return nil
			}

			// protocol violations and oversized messages land here; gorilla has already sent the close frame
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(conn, actionError, "invalid message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			return fmt.Errorf("failed to handle %s: %w", message.Action, err)
		}
	}
}
