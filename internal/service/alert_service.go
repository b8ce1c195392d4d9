package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/notify"
	"github.com/rs/zerolog/log"
)

type AlertService struct {
	notifier  *notify.Notifier
	recipient string
}

func NewAlertService(notifier *notify.Notifier, recipient string) *AlertService {
	return &AlertService{notifier: notifier, recipient: recipient}
}

// SendAlerts mails the configured recipient once per critical item. Delivery
// failures are reported per item and do not fail the call.
func (s *AlertService) SendAlerts(ctx context.Context, items []domain.CriticalItem) (*domain.AlertReport, error) {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("%w: critical item %d: Item_Name is required", domain.ErrInvalidItem, i)
		}
	}

	results := s.notifier.Notify(ctx, items, s.recipient)
	sent := notify.CountSent(results)

	log.Info().
		Int("requested", len(items)).
		Int("sent", sent).
		Str("recipient", s.recipient).
		Msg("low stock alerts processed")

	return &domain.AlertReport{
		Sent:    sent,
		Results: results,
	}, nil
}
