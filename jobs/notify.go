package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulso-hq/pulso/internal/alerts"
)

// AlertNotifier delivers new alerts to reviewers by enqueueing an email
// task. It implements alerts.Notifier.
type AlertNotifier struct {
	client    *Client
	recipient string
}

// NewAlertNotifier constructs an AlertNotifier. Recipient is the
// reviewer distribution address.
func NewAlertNotifier(client *Client, recipient string) *AlertNotifier {
	return &AlertNotifier{client: client, recipient: recipient}
}

// NotifyAlert enqueues the notification email.
func (n *AlertNotifier) NotifyAlert(ctx context.Context, alert alerts.Alert) error {
	if n == nil || n.client == nil {
		return errors.New("alert notifier not configured")
	}
	_, err := n.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      n.recipient,
		Subject: fmt.Sprintf("[pulso] %s alert: %s", alert.Severity, alert.Kind),
		Body:    alert.Message,
	})
	return err
}

var _ alerts.Notifier = (*AlertNotifier)(nil)
