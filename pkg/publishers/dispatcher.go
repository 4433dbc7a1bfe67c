package publishers

import "context"

// Dispatcher fans alert events out to every configured publisher.
type Dispatcher struct {
	pubs []Publisher
	log  Logger
}

// NewDispatcher wraps the built publishers behind a single notify surface.
func NewDispatcher(pubs []Publisher, log Logger) *Dispatcher {
	return &Dispatcher{pubs: pubs, log: ensureLogger(log)}
}

// Notify delivers the event to every publisher and reports whether at
// least one sink accepted it. Individual publisher failures are logged and
// do not stop delivery to the rest.
func (d *Dispatcher) Notify(ctx context.Context, evt Event) bool {
	delivered := false
	for _, pub := range d.pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			d.log.WarnObj("alert delivery failed", "notify_error", map[string]any{
				"publisher_id":    pub.ID(),
				"publisher_type":  pub.Type(),
				"subscription_id": evt.SubscriptionID,
				"error":           err.Error(),
			})
			continue
		}
		delivered = true
	}
	return delivered
}
