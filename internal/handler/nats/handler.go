package nats

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	pkgerrors "github.com/pkg/errors"

	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/query"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

const eventTimeout = 10 * time.Second

// Handler consumes confirmation events published by external chain watchers
type Handler struct {
	tracker  tracker.ITracker
	query    query.IQuery
	logger   *logger.Logger
	recorder *monitoring.BusinessMetricsRecorder
	subs     []*nats.Subscription
}

func NewHandler(
	tracker tracker.ITracker,
	query query.IQuery,
	logger *logger.Logger,
	recorder *monitoring.BusinessMetricsRecorder,
) (*Handler, error) {
	switch {
	case tracker == nil:
		return nil, errors.New("nats handler: tracker is required")
	case query == nil:
		return nil, errors.New("nats handler: query is required")
	case logger == nil:
		return nil, errors.New("nats handler: logger is required")
	case recorder == nil:
		return nil, errors.New("nats handler: metrics recorder is required")
	}

	return &Handler{
		tracker:  tracker,
		query:    query,
		logger:   logger.With(map[string]string{"component": "confirmation_feed"}),
		recorder: recorder,
	}, nil
}

// Subscribe starts consuming subject on conn. Events are handled one at a time
// per subscription, so per-id order from a single watcher is preserved.
func (h *Handler) Subscribe(conn *nats.Conn, subject string) error {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		if err := h.handleConfirmationEvent(ctx, msg.Data); err != nil {
			h.logger.Error("[Subscribe][handleConfirmationEvent]", map[string]string{
				"subject": msg.Subject,
				"error":   err.Error(),
			})
		}
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to subscribe to %s", subject)
	}
	h.subs = append(h.subs, sub)

	h.logger.Info("[Subscribe] consuming confirmation events", map[string]string{
		"subject": subject,
	})
	return nil
}

// Close unsubscribes from all NATS subscriptions
func (h *Handler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("[Close][Unsubscribe]", map[string]string{
				"subject": sub.Subject,
				"error":   err.Error(),
			})
		}
	}
	h.subs = nil
}
