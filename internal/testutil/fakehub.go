package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hubview/internal/types"
)

// Reply is what the fake hub answers to one command.
type Reply struct {
	Success bool
	Result  any
	Error   *types.HubError
	// Drop suppresses the reply entirely.
	Drop bool
}

// Handler answers a decoded command frame.
type Handler func(cmd map[string]any) Reply

// Ok is a successful reply carrying result.
func Ok(result any) Reply {
	return Reply{Success: true, Result: result}
}

// Fail is a rejected reply.
func Fail(code, message string) Reply {
	return Reply{Error: &types.HubError{Code: code, Message: message}}
}

// FakeHub is an in-process websocket server speaking the hub protocol:
// banner, token check, then one reply per command from registered handlers.
type FakeHub struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	token    string

	// Banner replaces the auth_required frame when set.
	Banner any

	mu       sync.Mutex
	writeMu  sync.Mutex
	handlers map[string]Handler
	commands []map[string]any
	conn     *websocket.Conn
	arrived  chan map[string]any
}

func NewFakeHub(t testing.TB, token string) *FakeHub {
	t.Helper()
	h := &FakeHub{
		token: token,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: map[string]Handler{},
		arrived:  make(chan map[string]any, 256),
	}
	h.server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Close)
	return h
}

// URL is the websocket endpoint of the fake hub.
func (h *FakeHub) URL() string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/api/websocket"
}

func (h *FakeHub) Handle(cmdType string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[cmdType] = handler
}

// Respond registers a fixed successful result for a command type.
func (h *FakeHub) Respond(cmdType string, result any) {
	h.Handle(cmdType, func(map[string]any) Reply { return Ok(result) })
}

// Commands returns every command frame received so far.
func (h *FakeHub) Commands() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), h.commands...)
}

// CommandTypes lists received command types in arrival order.
func (h *FakeHub) CommandTypes() []string {
	cmds := h.Commands()
	out := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		cmdType, _ := cmd["type"].(string)
		out = append(out, cmdType)
	}
	return out
}

// WaitFor blocks until a command of cmdType arrives and returns it.
func (h *FakeHub) WaitFor(t testing.TB, cmdType string, timeout time.Duration) map[string]any {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case cmd := <-h.arrived:
			if cmd["type"] == cmdType {
				return cmd
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s command; got %v", cmdType, h.CommandTypes())
			return nil
		}
	}
}

// CommandID extracts the numeric id of a decoded command frame.
func CommandID(cmd map[string]any) int {
	id, _ := cmd["id"].(float64)
	return int(id)
}

// Event pushes an event frame for a subscription id.
func (h *FakeHub) Event(id int, event any) error {
	return h.Send(map[string]any{"id": id, "type": types.MessageEvent, "event": event})
}

// Send writes an arbitrary frame to the connected client.
func (h *FakeHub) Send(frame any) error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}
	return h.write(conn, frame)
}

// SendRaw writes data as a text frame without encoding it.
func (h *FakeHub) SendRaw(data string) error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, []byte(data))
}

// Disconnect drops the current client connection.
func (h *FakeHub) Disconnect() {
	h.mu.Lock()
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (h *FakeHub) Close() {
	h.Disconnect()
	h.server.Close()
}

func (h *FakeHub) write(conn *websocket.Conn, frame any) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

func (h *FakeHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	banner := h.Banner
	if banner == nil {
		banner = map[string]any{"type": types.MessageAuthRequired, "ha_version": "2025.1.0"}
	}
	if err := h.write(conn, banner); err != nil {
		return
	}
	var auth types.AuthMessage
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth.Type != types.MessageAuth || auth.AccessToken != h.token {
		_ = h.write(conn, map[string]any{"type": types.MessageAuthInvalid, "message": "Invalid access token or password"})
		return
	}
	if err := h.write(conn, map[string]any{"type": types.MessageAuthOK, "ha_version": "2025.1.0"}); err != nil {
		return
	}

	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd map[string]any
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		h.mu.Lock()
		h.commands = append(h.commands, cmd)
		cmdType, _ := cmd["type"].(string)
		handler := h.handlers[cmdType]
		h.mu.Unlock()
		select {
		case h.arrived <- cmd:
		default:
		}

		reply := Fail("unknown_command", "Unknown command.")
		if handler != nil {
			reply = handler(cmd)
		}
		if reply.Drop {
			continue
		}
		frame := map[string]any{
			"id":      cmd["id"],
			"type":    types.MessageResult,
			"success": reply.Success,
		}
		if reply.Success {
			frame["result"] = reply.Result
		} else {
			frame["error"] = reply.Error
		}
		if err := h.write(conn, frame); err != nil {
			return
		}
	}
}
