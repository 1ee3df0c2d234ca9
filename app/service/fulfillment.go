package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

// Fulfiller receives authenticated payment outcomes. Implementations own their
// failure handling; the notification handler fires and forgets.
type Fulfiller interface {
	FulfillOrder(ctx context.Context, event *types.NotificationEvent)
	RecordFailure(ctx context.Context, event *types.NotificationEvent)
}

// LogFulfiller is the default collaborator: it logs outcomes and deduplicates
// fulfillment by payment id, since a replayed valid webhook reaches it more
// than once.
type LogFulfiller struct {
	dedupTTL time.Duration
	logger   logrus.FieldLogger

	mu        sync.Mutex
	fulfilled map[string]time.Time
}

func NewLogFulfiller(dedupTTL time.Duration) *LogFulfiller {
	if dedupTTL <= 0 {
		dedupTTL = time.Hour
	}
	return &LogFulfiller{
		dedupTTL:  dedupTTL,
		logger:    factory.NewModuleLogger("fulfillment"),
		fulfilled: map[string]time.Time{},
	}
}

func (f *LogFulfiller) FulfillOrder(_ context.Context, event *types.NotificationEvent) {
	if !f.markFulfilled(event.PaymentID) {
		f.logger.WithField("payment_id", event.PaymentID).Info("Duplicate fulfillment skipped")
		return
	}
	f.logger.WithField("payment_id", event.PaymentID).Info("Payment succeeded, fulfilling order")
}

func (f *LogFulfiller) RecordFailure(_ context.Context, event *types.NotificationEvent) {
	f.logger.WithField("payment_id", event.PaymentID).Info("Payment failed")
}

// markFulfilled records the payment id and reports whether this is the first
// sighting within the retention window.
func (f *LogFulfiller) markFulfilled(paymentID string) bool {
	now := time.Now()

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, seen := range f.fulfilled {
		if now.Sub(seen) > f.dedupTTL {
			delete(f.fulfilled, id)
		}
	}

	if _, ok := f.fulfilled[paymentID]; ok {
		return false
	}
	f.fulfilled[paymentID] = now
	return true
}
