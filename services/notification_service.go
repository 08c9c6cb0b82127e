// services/notification_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"carcool-backend/config"
	"carcool-backend/models"
	"carcool-backend/store"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Notifier tells a customer their invoice is ready.
type Notifier interface {
	NotifyInvoice(ctx context.Context, bill *models.Bill, url string) error
}

type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NotificationService sends invoice links over WhatsApp when a WhatsApp sender is
// configured, otherwise over SMS. Every attempt is logged to notification_logs.
type NotificationService struct {
	backend      store.Backend
	api          messageSender
	cfg          config.TwilioConfig
	businessName string
}

// NewNotificationService returns nil when Twilio is not configured.
func NewNotificationService(backend store.Backend, cfg config.TwilioConfig, businessName string) *NotificationService {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &NotificationService{
		backend:      backend,
		api:          client.Api,
		cfg:          cfg,
		businessName: businessName,
	}
}

func (s *NotificationService) NotifyInvoice(ctx context.Context, bill *models.Bill, url string) error {
	if bill.Customer == nil {
		return errors.New("bill has no customer loaded")
	}

	body := s.renderMessage(ctx, bill, url)
	if body == "" {
		return nil
	}

	to := s.cfg.CountryCode + bill.Customer.Mobile
	if strings.HasPrefix(bill.Customer.Mobile, "+") {
		to = bill.Customer.Mobile
	}

	channel := "sms"
	from := s.cfg.PhoneNumber
	if s.cfg.WhatsAppNumber != "" {
		channel = "whatsapp"
		to = "whatsapp:" + to
		from = "whatsapp:" + s.cfg.WhatsAppNumber
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, sendErr := s.api.CreateMessage(params)
	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		status = "failed"
		errorMsg = sendErr.Error()
		zap.L().Warn("failed to send invoice message",
			zap.String("bill_id", bill.ID.String()),
			zap.String("channel", channel),
			zap.Error(sendErr))
	} else if resp != nil && resp.Sid != nil {
		zap.L().Info("invoice message sent",
			zap.String("bill_id", bill.ID.String()),
			zap.String("channel", channel),
			zap.String("sid", *resp.Sid))
	}

	entry := models.NotificationLog{
		BillID:       bill.ID,
		CustomerID:   bill.CustomerID,
		Message:      body,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}
	if err := s.backend.LogNotification(ctx, &entry); err != nil {
		zap.L().Error("failed to log notification", zap.String("bill_id", bill.ID.String()), zap.Error(err))
	}
	return sendErr
}

// renderMessage fills the stored template, or the default one when none is saved.
// An inactive template disables the message.
func (s *NotificationService) renderMessage(ctx context.Context, bill *models.Bill, url string) string {
	message := models.DefaultInvoiceMessage
	template, err := s.backend.NotificationTemplate(ctx, models.TemplateInvoiceReady)
	switch {
	case err == nil && !template.IsActive:
		return ""
	case err == nil:
		message = template.Message
	case !errors.Is(err, store.ErrNotFound):
		zap.L().Warn("falling back to default invoice template", zap.Error(err))
	}

	return strings.NewReplacer(
		"[CustomerName]", bill.Customer.Name,
		"[BusinessName]", s.businessName,
		"[InvoiceNo]", bill.InvoiceNo,
		"[Total]", bill.TotalAmount.StringFixed(2),
		"[Link]", url,
	).Replace(message)
}
