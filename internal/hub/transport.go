package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hubview/internal/logging"
)

const (
	defaultReceiveTimeout = 5 * time.Second
	defaultDialTimeout    = 10 * time.Second
	writeTimeout          = 10 * time.Second
	frameBuffer           = 64
)

// Transport is a message-oriented duplex connection to the hub.
type Transport interface {
	Send(ctx context.Context, v any) error
	// Receive returns the next frame or ErrReceiveTimeout when none arrived
	// within the transport's read timeout.
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

type DialOptions struct {
	ReceiveTimeout time.Duration
	DialTimeout    time.Duration
	Header         http.Header
	Logger         logging.Logger
}

// WSTransport is a Transport over a gorilla websocket. A single pump
// goroutine owns reads so a receive timeout never corrupts the connection.
type WSTransport struct {
	conn           *websocket.Conn
	url            string
	receiveTimeout time.Duration
	logger         logging.Logger

	writeMu   sync.Mutex
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	readErr   error
}

// Dial opens the websocket at url. Failures are returned as *ConnectionError.
func Dial(ctx context.Context, url string, opts DialOptions) (*WSTransport, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &ConnectionError{Err: errors.New("hub url is required")}
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: dialTimeout,
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, resp, err := dialer.DialContext(dialCtx, url, opts.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, &ConnectionError{URL: url, Err: err}
	}
	return newWSTransport(conn, url, opts), nil
}

func newWSTransport(conn *websocket.Conn, url string, opts DialOptions) *WSTransport {
	receiveTimeout := opts.ReceiveTimeout
	if receiveTimeout <= 0 {
		receiveTimeout = defaultReceiveTimeout
	}
	t := &WSTransport{
		conn:           conn,
		url:            url,
		receiveTimeout: receiveTimeout,
		logger:         logging.OrNop(opts.Logger),
		frames:         make(chan []byte, frameBuffer),
		done:           make(chan struct{}),
	}
	go t.readPump()
	return t
}

func (t *WSTransport) readPump() {
	defer close(t.frames)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.readErr = err
			return
		}
		select {
		case t.frames <- data:
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) Send(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	deadline := time.Now().Add(writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = t.conn.SetWriteDeadline(deadline)
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return &ConnectionError{URL: t.url, Err: err}
	}
	if t.logger.Enabled(logging.Debug) {
		t.logger.Debug("hub_send", logging.F("bytes", len(data)))
	}
	return nil
}

func (t *WSTransport) Receive(ctx context.Context) ([]byte, error) {
	timer := time.NewTimer(t.receiveTimeout)
	defer timer.Stop()
	select {
	case data, ok := <-t.frames:
		if !ok {
			return nil, t.receiveErr()
		}
		return data, nil
	case <-timer.C:
		return nil, ErrReceiveTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrClosed
	}
}

// receiveErr is only valid once frames is closed.
func (t *WSTransport) receiveErr() error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	err := t.readErr
	if err == nil {
		err = errors.New("connection closed by hub")
	}
	return &ConnectionError{URL: t.url, Err: err}
}

func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
