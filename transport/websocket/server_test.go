package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewSessionRepository(), repository.NewLogResultPublisher(logger))

	server := httptest.NewServer(New(logger, manager).Handler(ctx))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	return &testClient{t: t, conn: conn}
}

func (that *testClient) send(action string, payload any) {
	that.t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(that.t, err)

	require.NoError(that.t, that.conn.WriteJSON(Message{Action: action, Payload: data}))
}

func (that *testClient) receive() (string, *Payload) {
	that.t.Helper()

	var message Message
	require.NoError(that.t, that.conn.ReadJSON(&message))

	var payload Payload
	require.NoError(that.t, json.Unmarshal(message.Payload, &payload))

	return message.Action, &payload
}

func (that *testClient) roundTrip(action string, payload any) *Payload {
	that.t.Helper()

	that.send(action, payload)
	gotAction, resp := that.receive()
	require.Equal(that.t, action, gotAction)

	return resp
}

// writeRaw bypasses the client framing so malformed frames reach the server.
func (that *testClient) writeRaw(frames ...[]byte) {
	that.t.Helper()

	for _, frame := range frames {
		_, err := that.conn.UnderlyingConn().Write(frame)
		require.NoError(that.t, err)
	}
}

func (that *testClient) requireClosedWith(code int) {
	that.t.Helper()

	_, _, err := that.conn.ReadMessage()
	require.Error(that.t, err)
	assert.True(that.t, websocket.IsCloseError(err, code), "got %v", err)
}

func TestServer_Upgrade_NotWebSocket(t *testing.T) {
	server := newTestServer(t)

	// When: /ws is requested without an upgrade
	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Then: the request is rejected
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Game(t *testing.T) {
	server := newTestServer(t)
	client := dial(t, server)

	// Given: a connected client with a new session
	connected := client.roundTrip(actionConnect, Payload{})
	require.Empty(t, connected.Error)
	require.NotNil(t, connected.Session)
	sessionID := connected.Session.ID

	t.Run("Turn", func(t *testing.T) {
		// When: X plays a corner
		resp := client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 0})

		// Then: the computer answers in the center
		require.Empty(t, resp.Error)
		require.NotNil(t, resp.Session.Game.ComputerMove)
		assert.Equal(t, 4, *resp.Session.Game.ComputerMove)
	})

	t.Run("Occupied cell", func(t *testing.T) {
		resp := client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 4})

		assert.Contains(t, resp.Error, "occupied")
		assert.Nil(t, resp.Session)
	})

	t.Run("Position zero is not missing", func(t *testing.T) {
		resp := client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 0})

		assert.Contains(t, resp.Error, "occupied")
	})

	t.Run("Missing position", func(t *testing.T) {
		resp := client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID})

		assert.Equal(t, "position is required", resp.Error)
	})

	t.Run("Game over and new game", func(t *testing.T) {
		// When: X plays 1 and 8, O blocks at 2 and wins at 6
		client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 1})
		resp := client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 8})

		// Then: the game is over with an alert
		require.Empty(t, resp.Error)
		assert.Equal(t, entity.StatusFinished, resp.Session.Game.Status)
		assert.Equal(t, entity.PlayerO, resp.Session.Game.Winner)
		require.NotNil(t, resp.Session.Game.Alert)
		assert.Equal(t, entity.AlertYouLose, resp.Session.Game.Alert.Message)

		// When: X keeps playing
		resp = client.roundTrip(actionGameTurn, map[string]any{"session_id": sessionID, "position": 3})

		// Then: the final board comes back with an error
		assert.NotEmpty(t, resp.Error)
		require.NotNil(t, resp.Session)
		assert.Equal(t, entity.StatusFinished, resp.Session.Game.Status)

		// When: a new game is started
		resp = client.roundTrip(actionGameNew, Payload{SessionID: sessionID})

		// Then: the board is clear
		require.Empty(t, resp.Error)
		assert.Equal(t, entity.StatusOngoing, resp.Session.Game.Status)
	})

	t.Run("Stats", func(t *testing.T) {
		resp := client.roundTrip(actionTournamentStats, Payload{SessionID: sessionID})

		require.NotNil(t, resp.Stats)
		assert.Equal(t, entity.Stats{GamesPlayed: 1, GamesWonByO: 1}, *resp.Stats)
	})

	t.Run("Resume on a new connection", func(t *testing.T) {
		other := dial(t, server)

		resp := other.roundTrip(actionConnect, Payload{SessionID: sessionID})

		require.NotNil(t, resp.Session)
		assert.Equal(t, sessionID, resp.Session.ID)
		assert.Equal(t, 1, resp.Session.Stats.GamesPlayed)
	})

	t.Run("Unknown session on connect creates one", func(t *testing.T) {
		resp := client.roundTrip(actionConnect, Payload{SessionID: "9999999"})

		require.NotNil(t, resp.Session)
		assert.NotEqual(t, "9999999", resp.Session.ID)
	})

	t.Run("Unknown action", func(t *testing.T) {
		resp := client.roundTrip("game:join", Payload{})

		assert.Equal(t, "unknown action", resp.Error)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		require.NoError(t, client.conn.WriteMessage(websocket.TextMessage, []byte("{")))

		action, resp := client.receive()

		assert.Equal(t, actionError, action)
		assert.Equal(t, "invalid message", resp.Error)
	})
}

func TestServer_ProtocolViolations(t *testing.T) {
	// zero mask key, so masked payloads read as plain text
	masked := func(header byte, payload string) []byte {
		return append([]byte{header, 0x80 | byte(len(payload)), 0, 0, 0, 0}, payload...)
	}

	tests := []struct {
		name   string
		frames [][]byte
	}{
		{
			name:   "Unmasked client frame",
			frames: [][]byte{{0x81, 0x03, 'a', 'b', 'c'}},
		},
		{
			name:   "New text frame inside a fragmented message",
			frames: [][]byte{masked(0x01, `{"`), masked(0x81, `a"}`)},
		},
		{
			name:   "Continuation without a message to continue",
			frames: [][]byte{masked(0x80, "hi")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t)
			client := dial(t, server)

			// When: the frames are sent
			client.writeRaw(tt.frames...)

			// Then: the server fails the connection with a protocol error
			client.requireClosedWith(websocket.CloseProtocolError)
		})
	}
}

func TestServer_MessageTooLarge(t *testing.T) {
	server := newTestServer(t)
	client := dial(t, server)

	// When: a message over the limit is sent
	_ = client.conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", maxMessageSize+1)))

	// Then: the connection is dropped
	_, _, err := client.conn.ReadMessage()
	require.Error(t, err)
}

func TestServer_Close(t *testing.T) {
	server := newTestServer(t)
	client := dial(t, server)

	// When: the client closes normally
	err := client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	require.NoError(t, err)

	// Then: the server echoes the close
	client.requireClosedWith(websocket.CloseNormalClosure)
}
