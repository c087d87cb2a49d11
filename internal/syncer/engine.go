package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"hubview/internal/hub"
	"hubview/internal/logging"
	"hubview/internal/registry"
	"hubview/internal/types"
	"hubview/internal/view"
)

const intentBuffer = 16

var ErrNotRunning = errors.New("engine is not running")

type Options struct {
	URL   string
	Token string
	Dial  hub.DialOptions
	// Builder derives view models; nil uses a lenient default resolver.
	Builder *view.Builder
	Logger  logging.Logger
}

// Engine owns the registry for one hub connection. Only the sync loop
// mutates it; readers get immutable view.Model snapshots through Updates.
type Engine struct {
	opts    Options
	logger  logging.Logger
	builder *view.Builder
	pub     *publisher
	intents chan view.Intent
	running chan struct{}
	started atomic.Bool
	now     func() time.Time
}

func New(opts Options) *Engine {
	logger := logging.OrNop(opts.Logger)
	if opts.Dial.Logger == nil {
		opts.Dial.Logger = logger
	}
	builder := opts.Builder
	if builder == nil {
		builder = view.NewBuilder(nil)
	}
	return &Engine{
		opts:    opts,
		logger:  logger,
		builder: builder,
		pub:     newPublisher(),
		intents: make(chan view.Intent, intentBuffer),
		running: make(chan struct{}),
		now:     time.Now,
	}
}

// Updates delivers the latest engine state. The channel is closed after the
// final PhaseStopped update once Run returns.
func (e *Engine) Updates() <-chan Update {
	return e.pub.C()
}

// Latest returns the most recently published update.
func (e *Engine) Latest() Update {
	return e.pub.Latest()
}

// Submit queues an intent for the sync loop. Intents for entities that do
// not accept the action are rejected without contacting the hub.
func (e *Engine) Submit(ctx context.Context, intent view.Intent) error {
	if _, _, err := intent.Service(); err != nil {
		e.logger.Warn("intent_ignored", logging.F("entity_id", intent.EntityID), logging.F("action", intent.Action), logging.Err(err))
		return err
	}
	select {
	case e.intents <- intent:
		return nil
	case <-e.running:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run connects, loads the snapshot, subscribes and applies deltas until ctx
// is cancelled or the connection fails. Cancellation returns nil; every
// other exit is terminal and returned.
func (e *Engine) Run(ctx context.Context) (err error) {
	if !e.started.CompareAndSwap(false, true) {
		return errors.New("engine already ran")
	}
	runID := logging.NewRunID()
	logger := e.logger.With(logging.F("run_id", runID))
	defer func() {
		close(e.running)
		if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			logger.Error("engine_stopped", logging.Err(err))
		} else {
			logger.Info("engine_stopped")
		}
		e.pub.close(err)
	}()

	e.pub.publish(func(u *Update) { u.Phase = PhaseConnecting })
	client, err := hub.Connect(ctx, hub.Options{URL: e.opts.URL, Token: e.opts.Token, Dial: e.opts.Dial})
	if err != nil {
		return err
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error { return e.sync(gctx, client, logger) })
	return g.Wait()
}

func (e *Engine) sync(ctx context.Context, client *hub.Client, logger logging.Logger) error {
	e.pub.publish(func(u *Update) {
		u.Phase = PhaseLoading
		u.HubVersion = client.HubVersion()
	})
	reg, err := loadRegistry(ctx, client, logger)
	if err != nil {
		return err
	}
	model, err := e.builder.Build(reg)
	if err != nil {
		return fmt.Errorf("build view: %w", err)
	}
	e.pub.publish(func(u *Update) { u.Model = model })

	sub, err := hub.Subscribe(ctx, client.Correlator(), reg.EntityIDs(), logger)
	if err != nil {
		return &hub.StartupError{Step: hub.CommandSubscribeEntities, Err: err}
	}
	defer sub.Close()
	e.pub.publish(func(u *Update) { u.Phase = PhaseLive })

	g, gctx := errgroup.WithContext(ctx)
	events := make(chan types.EntityEvent)
	g.Go(func() error {
		for {
			event, err := sub.Next(gctx)
			if err != nil {
				return err
			}
			select {
			case events <- event:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case event := <-events:
				next, err := e.apply(reg, model, event, logger)
				if err != nil {
					return err
				}
				model = next
			case intent := <-e.intents:
				g.Go(func() error {
					e.callService(gctx, client, intent, logger)
					return nil
				})
			}
		}
	})
	return g.Wait()
}

func (e *Engine) apply(reg *registry.Registry, model view.Model, event types.EntityEvent, logger logging.Logger) (view.Model, error) {
	if event.Empty() {
		return model, nil
	}
	result := reg.ApplyEvent(event)
	if len(result.Skipped) > 0 {
		logger.Debug("delta_skipped", logging.F("entities", result.Skipped))
	}
	if len(result.Changed) == 0 {
		return model, nil
	}
	next, err := e.builder.Patch(model, reg, result.Changed)
	if err != nil {
		return model, fmt.Errorf("patch view: %w", err)
	}
	if next.Version != model.Version {
		e.pub.publish(func(u *Update) { u.Model = next })
	}
	logger.Debug("delta_applied", logging.F("changed", result.Changed), logging.F("version", next.Version))
	return next, nil
}

// callService failures are reported on the status line and never end the
// engine.
func (e *Engine) callService(ctx context.Context, client *hub.Client, intent view.Intent, logger logging.Logger) {
	domain, service, err := intent.Service()
	if err == nil {
		err = client.Do(ctx, hub.CallService(domain, service, intent.EntityID), nil)
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("service_call_failed",
			logging.F("entity_id", intent.EntityID),
			logging.F("action", intent.Action),
			logging.Err(err),
		)
		e.setStatus(fmt.Sprintf("%s %s failed: %v", intent.Action, intent.EntityID, err), true)
		return
	}
	logger.Info("service_called", logging.F("entity_id", intent.EntityID), logging.F("service", domain+"."+service))
	e.setStatus(fmt.Sprintf("%s %s", intent.Action, intent.EntityID), false)
}

func (e *Engine) setStatus(status string, isErr bool) {
	at := e.now()
	e.pub.publish(func(u *Update) {
		u.Status = status
		u.StatusErr = isErr
		u.StatusAt = at
	})
}

// Snapshot connects, loads the registry and derives one model without
// subscribing. It is independent of Run.
func (e *Engine) Snapshot(ctx context.Context) (view.Model, *registry.Registry, error) {
	client, err := hub.Connect(ctx, hub.Options{URL: e.opts.URL, Token: e.opts.Token, Dial: e.opts.Dial})
	if err != nil {
		return view.Model{}, nil, err
	}
	defer client.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = client.Run(runCtx) }()

	reg, err := loadRegistry(ctx, client, e.logger)
	if err != nil {
		return view.Model{}, nil, err
	}
	model, err := e.builder.Build(reg)
	if err != nil {
		return view.Model{}, nil, fmt.Errorf("build view: %w", err)
	}
	return model, reg, nil
}

func loadRegistry(ctx context.Context, c hub.Commander, logger logging.Logger) (*registry.Registry, error) {
	snap, err := hub.LoadSnapshot(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	reg.SetConfig(snap.Config)
	reg.SetIcons(snap.Icons)
	reg.SetEntities(snap.Entities)
	reg.SetAreas(snap.Areas)
	reg.SetDevices(snap.Devices)
	reg.SetStates(snap.States)
	return reg, nil
}
