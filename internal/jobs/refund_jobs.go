package jobs

import (
	"context"

	"servibook-backend/internal/logger"
)

// RetryFailedRefunds resubmits FAILED refund records to the payment
// processor. The same record is resubmitted every time; a second record
// for a booking can never be created.
func (jr *JobRunner) RetryFailedRefunds() {
	jr.runWithRecovery("RetryFailedRefunds", func() {
		ctx := context.Background()

		retried, err := jr.refundSvc.RetryFailedRefunds(ctx)
		if err != nil {
			logger.Error("Failed to retry refunds", "error", err)
			return
		}
		logger.Info("Resubmitted failed refunds", "count", retried)
	})
}
