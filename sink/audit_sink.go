// Package sink contains EventSink implementations fed by the publisher.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio-engine/domain/event"
	"portfolio-engine/repositories"
)

type AuditSink struct {
	trail repositories.IAuditTrail
	log   *slog.Logger
}

func NewAuditSink(trail repositories.IAuditTrail, log *slog.Logger) AuditSink {
	return AuditSink{trail: trail, log: log}
}

func (s AuditSink) Consume(ctx context.Context, e event.Produced) error {
	switch evt := e.(type) {
	case event.PortfolioUpdated:
		return s.trail.Record(ctx, evt)
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}
