package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hubview/internal/logging"
	"hubview/internal/types"
)

// Command is one outbound request. The correlator adds the id.
type Command struct {
	Type   string
	Fields map[string]any
}

func (c Command) frame(id int) map[string]any {
	frame := make(map[string]any, len(c.Fields)+2)
	for key, value := range c.Fields {
		frame[key] = value
	}
	frame["id"] = id
	frame["type"] = c.Type
	return frame
}

type pendingCommand struct {
	id       int
	cmdType  string
	keep     bool
	replies  chan types.Message
	released chan struct{}
	once     sync.Once
}

func (p *pendingCommand) release() {
	p.once.Do(func() { close(p.released) })
}

// Correlator matches replies to the commands that caused them. Sends are
// serialized together with id allocation so ids reach the hub in order.
// Dispatch and Fail belong to the receive loop and must not be called from
// anywhere else.
type Correlator struct {
	transport Transport
	logger    logging.Logger

	sendMu sync.Mutex

	mu       sync.Mutex
	nextID   int
	pending  map[int]*pendingCommand
	closed   bool
	closeErr error
}

func NewCorrelator(t Transport, logger logging.Logger) *Correlator {
	return &Correlator{
		transport: t,
		logger:    logging.OrNop(logger),
		pending:   make(map[int]*pendingCommand),
	}
}

// AllocateID returns the next command id. Ids start at 1 and are never
// reused within a connection.
func (c *Correlator) AllocateID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return c.nextID
}

// Do sends cmd, waits for its reply and decodes the result payload into out
// (which may be nil). A failed reply returns *CommandError.
func (c *Correlator) Do(ctx context.Context, cmd Command, out any) error {
	p, err := c.send(ctx, cmd, false, 1)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		c.forget(p.id)
		return ctx.Err()
	case msg, ok := <-p.replies:
		if !ok {
			return c.terminalErr()
		}
		return decodeResult(p.id, cmd.Type, msg, out)
	}
}

// Stream is a long-lived registration: every frame carrying its id is
// delivered on C until Release.
type Stream struct {
	ID   int
	Type string
	C    <-chan types.Message

	correlator *Correlator
}

// Release stops routing frames to the stream.
func (s *Stream) Release() {
	s.correlator.forget(s.ID)
}

// Stream sends cmd and keeps its id registered so the acknowledgement and all
// later events are routed to the returned stream.
func (c *Correlator) Stream(ctx context.Context, cmd Command, buffer int) (*Stream, error) {
	if buffer < 1 {
		buffer = 1
	}
	p, err := c.send(ctx, cmd, true, buffer)
	if err != nil {
		return nil, err
	}
	return &Stream{ID: p.id, Type: cmd.Type, C: p.replies, correlator: c}, nil
}

// Register reserves id for long-lived routing without sending anything. A
// second registration of a live id is a protocol violation.
func (c *Correlator) Register(id int, buffer int) (<-chan types.Message, error) {
	if buffer < 1 {
		buffer = 1
	}
	p := newPending(id, "", true, buffer)
	if err := c.register(p); err != nil {
		return nil, err
	}
	return p.replies, nil
}

func newPending(id int, cmdType string, keep bool, buffer int) *pendingCommand {
	return &pendingCommand{
		id:       id,
		cmdType:  cmdType,
		keep:     keep,
		replies:  make(chan types.Message, buffer),
		released: make(chan struct{}),
	}
}

func (c *Correlator) register(p *pendingCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.closeErr
	}
	if _, exists := c.pending[p.id]; exists {
		return protocolErrorf(nil, "duplicate pending command id %d", p.id)
	}
	if p.id > c.nextID {
		c.nextID = p.id
	}
	c.pending[p.id] = p
	return nil
}

func (c *Correlator) send(ctx context.Context, cmd Command, keep bool, buffer int) (*pendingCommand, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	p := newPending(c.AllocateID(), cmd.Type, keep, buffer)
	if err := c.register(p); err != nil {
		return nil, err
	}
	if err := c.transport.Send(ctx, cmd.frame(p.id)); err != nil {
		c.forget(p.id)
		return nil, err
	}
	c.logger.Debug("hub_command_sent", logging.F("id", p.id), logging.F("type", cmd.Type))
	return p, nil
}

func (c *Correlator) forget(id int) {
	c.mu.Lock()
	p := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if p != nil {
		p.release()
	}
}

// Dispatch routes one result or event to its pending command. Frames whose id
// is not pending are dropped.
func (c *Correlator) Dispatch(ctx context.Context, msg types.Message) error {
	id, ok := types.CorrelationID(msg)
	if !ok {
		return protocolErrorf(nil, "unexpected %s frame after authentication", msg.MessageType())
	}
	c.mu.Lock()
	p := c.pending[id]
	if p != nil && !p.keep {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if p == nil {
		c.logger.Debug("hub_reply_unmatched", logging.F("id", id), logging.F("type", msg.MessageType()))
		return nil
	}
	select {
	case p.replies <- msg:
		return nil
	case <-p.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fail closes every pending command with err. Later sends return err.
func (c *Correlator) Fail(err error) {
	if err == nil {
		err = ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeErr = err
	for id, p := range c.pending {
		close(p.replies)
		delete(c.pending, id)
	}
}

// Pending reports the number of registered commands.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) terminalErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return c.closeErr
	}
	return ErrClosed
}

func decodeResult(id int, cmdType string, msg types.Message, out any) error {
	result, ok := msg.(types.Result)
	if !ok {
		return &CommandError{ID: id, Type: cmdType, Message: "unexpected reply type " + msg.MessageType()}
	}
	if !result.Success {
		cmdErr := &CommandError{ID: id, Type: cmdType, Raw: result.Raw}
		if result.Error != nil {
			cmdErr.Code = result.Error.Code
			cmdErr.Message = result.Error.Message
		}
		return cmdErr
	}
	if out == nil || len(result.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return &ProtocolError{Reason: fmt.Sprintf("malformed %s result", cmdType), Frame: result.Raw, Err: err}
	}
	return nil
}
