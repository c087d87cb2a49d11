package hub

import (
	"context"
	"encoding/json"

	"hubview/internal/logging"
	"hubview/internal/types"
)

const subscriptionBuffer = 32

// Subscription is an acknowledged subscribe_entities registration.
type Subscription struct {
	stream     *Stream
	correlator *Correlator
	logger     logging.Logger
}

// Subscribe registers for state deltas of entityIDs and waits for the
// acknowledgement. A rejected subscription returns *CommandError.
func Subscribe(ctx context.Context, c *Correlator, entityIDs []string, logger logging.Logger) (*Subscription, error) {
	logger = logging.OrNop(logger)
	stream, err := c.Stream(ctx, SubscribeEntities(entityIDs), subscriptionBuffer)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		stream.Release()
		return nil, ctx.Err()
	case msg, ok := <-stream.C:
		if !ok {
			return nil, c.terminalErr()
		}
		if err := decodeResult(stream.ID, stream.Type, msg, nil); err != nil {
			stream.Release()
			return nil, err
		}
	}
	logger.Info("hub_subscribed", logging.F("id", stream.ID), logging.F("entities", len(entityIDs)))
	return &Subscription{stream: stream, correlator: c, logger: logger}, nil
}

func (s *Subscription) ID() int { return s.stream.ID }

// Next blocks until the next entity event. A malformed event payload returns
// *ProtocolError; stray results for the subscription id are skipped.
func (s *Subscription) Next(ctx context.Context) (types.EntityEvent, error) {
	for {
		select {
		case <-ctx.Done():
			return types.EntityEvent{}, ctx.Err()
		case msg, ok := <-s.stream.C:
			if !ok {
				return types.EntityEvent{}, s.correlator.terminalErr()
			}
			frame, isEvent := msg.(types.Event)
			if !isEvent {
				s.logger.Debug("hub_subscription_reply_ignored", logging.F("id", s.stream.ID), logging.F("type", msg.MessageType()))
				continue
			}
			var event types.EntityEvent
			if err := json.Unmarshal(frame.Event, &event); err != nil {
				return types.EntityEvent{}, &ProtocolError{Reason: "malformed entity event", Frame: frame.Raw, Err: err}
			}
			return event, nil
		}
	}
}

func (s *Subscription) Close() {
	s.stream.Release()
}
