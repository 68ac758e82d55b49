package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
	"smartinventory/internal/sms"
)

const testMessage = "Test SMS from Smart Inventory ✅"

var alertsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "alerts_sent_total",
		Help: "SMS alerts handed to the gateway, by kind and outcome.",
	},
	[]string{"kind", "status"},
)

// SettingsInput is the writable part of AlertSettings.
// Nil fields keep the stored value, or the default when nothing is stored yet.
type SettingsInput struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	LowStock    *bool   `json:"low_stock,omitempty"`
	OutOfStock  *bool   `json:"out_of_stock,omitempty"`
}

func (in SettingsInput) applyTo(st *model.AlertSettings) {
	if in.Enabled != nil {
		st.Enabled = *in.Enabled
	}
	if in.PhoneNumber != nil {
		st.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.LowStock != nil {
		st.LowStock = *in.LowStock
	}
	if in.OutOfStock != nil {
		st.OutOfStock = *in.OutOfStock
	}
}

// SMSUnavailableError is returned by SendTest when the gateway cannot send for the user.
// ComposerURL is an smsto: link a client can open to send the message by hand.
type SMSUnavailableError struct {
	ComposerURL string
}

func (e *SMSUnavailableError) Error() string { return ErrSMSUnavailable.Error() }

func (e *SMSUnavailableError) Is(target error) bool { return target == ErrSMSUnavailable }

// TestResult reports a delivered test message.
type TestResult struct {
	MessageID string `json:"message_id"`
	To        string `json:"to"`
}

// AlertService manages per-user SMS alert settings and delivers stock alerts.
type AlertService interface {
	// GetSettings returns stored settings, or defaults when the user never saved any.
	GetSettings(ctx context.Context, userID string) (*model.AlertSettings, error)
	UpdateSettings(ctx context.Context, userID string, in SettingsInput) (*model.AlertSettings, error)
	ClearSettings(ctx context.Context, userID string) error
	CanSend(s *model.AlertSettings) bool
	SendTest(ctx context.Context, userID string) (*TestResult, error)
	NotifyStockChange(ctx context.Context, userID string, before, after *model.Item)
	// SendDigest messages every opted-in user a summary of their low-stock items.
	// It returns the number of messages sent.
	SendDigest(ctx context.Context) (int, error)
}

type alertService struct {
	settings repository.AlertSettingsRepository
	items    repository.ItemRepository
	sender   sms.Sender
	log      *zap.Logger
	now      func() time.Time
}

// NewAlertService constructs an AlertService. A nil sender disables delivery.
func NewAlertService(settings repository.AlertSettingsRepository, items repository.ItemRepository, sender sms.Sender, log *zap.Logger) AlertService {
	if log == nil {
		log = zap.NewNop()
	}
	return &alertService{
		settings: settings,
		items:    items,
		sender:   sender,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *alertService) GetSettings(ctx context.Context, userID string) (*model.AlertSettings, error) {
	st, err := s.settings.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DefaultAlertSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load alert settings: %w", err)
	}
	return st, nil
}

func (s *alertService) UpdateSettings(ctx context.Context, userID string, in SettingsInput) (*model.AlertSettings, error) {
	current, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := *current
	next.UserID = userID
	in.applyTo(&next)
	if next.Enabled && next.PhoneNumber == "" {
		return nil, ErrNumberRequired
	}
	next.UpdatedAt = s.now()

	out, err := s.settings.Upsert(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("save alert settings: %w", err)
	}
	return out, nil
}

func (s *alertService) ClearSettings(ctx context.Context, userID string) error {
	if err := s.settings.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear alert settings: %w", err)
	}
	return nil
}

func (s *alertService) CanSend(st *model.AlertSettings) bool {
	return st != nil &&
		st.Enabled &&
		strings.TrimSpace(st.PhoneNumber) != "" &&
		s.sender != nil && s.sender.Configured()
}

func (s *alertService) SendTest(ctx context.Context, userID string) (*TestResult, error) {
	st, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(st.PhoneNumber) == "" {
		return nil, ErrNumberRequired
	}
	if !s.CanSend(st) {
		return nil, &SMSUnavailableError{ComposerURL: composerURL(st.PhoneNumber, testMessage)}
	}

	id, err := s.send(ctx, "test", st.PhoneNumber, testMessage)
	if err != nil {
		return nil, err
	}
	return &TestResult{MessageID: id, To: st.PhoneNumber}, nil
}

func (s *alertService) NotifyStockChange(ctx context.Context, userID string, before, after *model.Item) {
	if after == nil {
		return
	}
	kind, body := stockAlert(before, after)
	if kind == "" {
		return
	}

	st, err := s.GetSettings(ctx, userID)
	if err != nil {
		s.log.Warn("alert_settings_unavailable", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !s.CanSend(st) {
		return
	}
	if (kind == "out_of_stock" && !st.OutOfStock) || (kind == "low_stock" && !st.LowStock) {
		return
	}

	if _, err := s.send(ctx, kind, st.PhoneNumber, body); err != nil {
		s.log.Warn("stock_alert_failed",
			zap.String("user_id", userID),
			zap.String("item_id", after.ID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

// stockAlert picks the alert an item write should raise. Alerts fire only when the
// item enters a state it was not in before.
func stockAlert(before, after *model.Item) (kind, body string) {
	switch {
	case after.IsOutOfStock():
		if before != nil && before.IsOutOfStock() {
			return "", ""
		}
		return "out_of_stock", "Out of stock: " + after.Name
	case after.IsLowStock():
		if before != nil && before.IsLowStock() {
			return "", ""
		}
		return "low_stock", fmt.Sprintf("Low stock: %s (qty: %d)", after.Name, after.Quantity)
	}
	return "", ""
}

func (s *alertService) SendDigest(ctx context.Context) (int, error) {
	if s.sender == nil || !s.sender.Configured() {
		return 0, nil
	}
	list, err := s.settings.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list alert settings: %w", err)
	}

	sent := 0
	for i := range list {
		st := &list[i]
		if !st.LowStock || !s.CanSend(st) {
			continue
		}
		items, err := s.items.ListByOwner(ctx, st.UserID)
		if err != nil {
			s.log.Warn("digest_list_failed", zap.String("user_id", st.UserID), zap.Error(err))
			continue
		}
		body := digestBody(items)
		if body == "" {
			continue
		}
		if _, err := s.send(ctx, "digest", st.PhoneNumber, body); err != nil {
			s.log.Warn("digest_send_failed", zap.String("user_id", st.UserID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func digestBody(items []model.Item) string {
	var parts []string
	for _, it := range items {
		if it.IsLowStock() {
			parts = append(parts, fmt.Sprintf("%s (qty: %d)", it.Name, it.Quantity))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Low stock digest: " + strings.Join(parts, ", ")
}

func (s *alertService) send(ctx context.Context, kind, to, body string) (string, error) {
	id, err := s.sender.Send(ctx, to, body)
	if err != nil {
		alertsSent.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("send sms: %w", err)
	}
	alertsSent.WithLabelValues(kind, "sent").Inc()
	s.log.Info("sms_sent", zap.String("kind", kind), zap.String("message_id", id))
	return id, nil
}

func composerURL(number, body string) string {
	return "smsto:" + url.PathEscape(strings.TrimSpace(number)) + "?body=" + url.QueryEscape(body)
}
