package hub

import (
	"context"
	"errors"

	"hubview/internal/logging"
	"hubview/internal/types"
)

// Client is an authenticated connection: one receive loop feeding the
// correlator, and any number of concurrent command callers.
type Client struct {
	transport  Transport
	correlator *Correlator
	logger     logging.Logger
	hubVersion string
}

// Options configures Connect.
type Options struct {
	URL   string
	Token string
	Dial  DialOptions
}

// Connect dials the hub and authenticates. The returned client is not yet
// receiving; start Run before issuing commands.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	logger := logging.OrNop(opts.Dial.Logger)
	transport, err := Dial(ctx, opts.URL, opts.Dial)
	if err != nil {
		return nil, err
	}
	authCtx := ctx
	if opts.Dial.DialTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, opts.Dial.DialTimeout)
		defer cancel()
	}
	version, err := Authenticate(authCtx, transport, opts.Token)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	logger.Info("hub_authenticated", logging.F("url", opts.URL), logging.F("hub_version", version))
	client := NewClient(transport, logger)
	client.hubVersion = version
	return client, nil
}

// NewClient wraps an already authenticated transport.
func NewClient(t Transport, logger logging.Logger) *Client {
	logger = logging.OrNop(logger)
	return &Client{
		transport:  t,
		correlator: NewCorrelator(t, logger),
		logger:     logger,
	}
}

func (c *Client) HubVersion() string { return c.hubVersion }

func (c *Client) Correlator() *Correlator { return c.correlator }

// Do issues one command and decodes its result into out.
func (c *Client) Do(ctx context.Context, cmd Command, out any) error {
	return c.correlator.Do(ctx, cmd, out)
}

// Run owns the read side of the connection until ctx ends or the connection
// fails. Every pending command is released with the terminal error.
func (c *Client) Run(ctx context.Context) (err error) {
	defer func() {
		terminal := err
		if terminal == nil || errors.Is(terminal, context.Canceled) {
			terminal = ErrClosed
		}
		c.correlator.Fail(terminal)
	}()
	for {
		data, err := c.transport.Receive(ctx)
		if errors.Is(err, ErrReceiveTimeout) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		msg, err := types.DecodeMessage(data)
		if errors.Is(err, types.ErrUnknownMessage) {
			c.logger.Warn("hub_frame_ignored", logging.Err(err))
			continue
		}
		if err != nil {
			return &ProtocolError{Reason: "malformed frame", Frame: data, Err: err}
		}
		if err := c.correlator.Dispatch(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	return c.transport.Close()
}
