package jobs

import (
	"context"
	"time"

	"servibook-backend/internal/logger"
)

// ExpireQuotes sweeps open quotes past their expiry timestamp. The sweep
// is advisory: every read re-evaluates expiry, so correctness never
// depends on this job having run.
func (jr *JobRunner) ExpireQuotes() {
	jr.runWithRecovery("ExpireQuotes", func() {
		ctx := context.Background()

		count, err := jr.store.Quotes.ExpireDue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to expire quotes", "error", err)
			return
		}
		logger.Info("Expired stale quotes", "count", count)
	})
}
