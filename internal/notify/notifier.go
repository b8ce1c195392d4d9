package notify

import (
	"context"
	"sync"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Notifier sends one alert per critical item. Failures are reported per item
// and never stop the remaining sends.
type Notifier struct {
	mailer      Mailer
	concurrency int64
}

// NewNotifier creates a notifier. A concurrency of 1 sends sequentially.
func NewNotifier(mailer Mailer, concurrency int) *Notifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Notifier{
		mailer:      mailer,
		concurrency: int64(concurrency),
	}
}

// Notify delivers an alert for every item to recipient. Results are in the
// same order as items.
func (n *Notifier) Notify(ctx context.Context, items []domain.CriticalItem, recipient string) []domain.AlertResult {
	results := make([]domain.AlertResult, len(items))
	sem := semaphore.NewWeighted(n.concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		results[i] = domain.AlertResult{Item: item.Name}

		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Error = err.Error()
			continue
		}

		wg.Add(1)
		go func(i int, item domain.CriticalItem) {
			defer wg.Done()
			defer sem.Release(1)

			if err := n.mailer.Send(ctx, Alert{Item: item, Recipient: recipient}); err != nil {
				log.Warn().Err(err).Str("item", item.Name).Str("recipient", recipient).Msg("low stock alert failed")
				results[i].Error = err.Error()
				return
			}

			log.Info().Str("item", item.Name).Str("recipient", recipient).Msg("low stock alert sent")
			results[i].AlertSent = true
		}(i, item)
	}

	wg.Wait()
	return results
}

// CountSent returns how many results were delivered.
func CountSent(results []domain.AlertResult) int {
	sent := 0
	for _, r := range results {
		if r.AlertSent {
			sent++
		}
	}
	return sent
}
