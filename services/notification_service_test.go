package services

import (
	"context"
	"errors"
	"testing"

	"carcool-backend/config"
	"carcool-backend/models"
	"carcool-backend/store/storetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeSender struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func notifyBill() *models.Bill {
	return &models.Bill{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		InvoiceNo:   "INV-2026-ABC234",
		TotalAmount: decimal.NewFromInt(750),
		Customer:    &models.Customer{Name: "Ravi", Mobile: "9876543210"},
	}
}

func TestNotifyInvoiceWhatsApp(t *testing.T) {
	backend := storetest.New(t)
	sender := &fakeSender{}
	s := &NotificationService{
		backend:      backend,
		api:          sender,
		cfg:          config.TwilioConfig{WhatsAppNumber: "+14155238886", PhoneNumber: "+15550001111", CountryCode: "+91"},
		businessName: "Car Cool",
	}
	bill := notifyBill()

	require.NoError(t, s.NotifyInvoice(context.Background(), bill, "https://files.test/x.pdf"))
	require.Len(t, sender.params, 1)
	assert.Equal(t, "whatsapp:+919876543210", *sender.params[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *sender.params[0].From)
	assert.Equal(t,
		"Hi Ravi, thank you for visiting Car Cool. Your invoice INV-2026-ABC234 for Rs. 750.00 is ready: https://files.test/x.pdf",
		*sender.params[0].Body)

	logs, err := backend.NotificationLogs(context.Background(), bill.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, "whatsapp", logs[0].Channel)
}

func TestNotifyInvoiceSMSTemplateAndFailure(t *testing.T) {
	ctx := context.Background()
	backend := storetest.New(t)
	msg := "[InvoiceNo] ready"
	_, err := backend.SaveNotificationTemplate(ctx, models.TemplateInvoiceReady, &msg, nil)
	require.NoError(t, err)

	sender := &fakeSender{err: errors.New("unreachable")}
	s := &NotificationService{
		backend: backend,
		api:     sender,
		cfg:     config.TwilioConfig{PhoneNumber: "+15550001111", CountryCode: "+91"},
	}
	bill := notifyBill()

	assert.Error(t, s.NotifyInvoice(ctx, bill, "u"))
	require.Len(t, sender.params, 1)
	assert.Equal(t, "+919876543210", *sender.params[0].To)
	assert.Equal(t, "INV-2026-ABC234 ready", *sender.params[0].Body)

	logs, err := backend.NotificationLogs(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "failed", logs[0].Status)
	assert.Equal(t, "unreachable", logs[0].ErrorMessage)
}

func TestNotifyInvoiceInactiveTemplateSkips(t *testing.T) {
	ctx := context.Background()
	backend := storetest.New(t)
	off := false
	_, err := backend.SaveNotificationTemplate(ctx, models.TemplateInvoiceReady, nil, &off)
	require.NoError(t, err)

	sender := &fakeSender{}
	s := &NotificationService{backend: backend, api: sender, cfg: config.TwilioConfig{CountryCode: "+91"}}
	require.NoError(t, s.NotifyInvoice(ctx, notifyBill(), "u"))
	assert.Empty(t, sender.params)
}

func TestNewNotificationServiceDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewNotificationService(nil, config.TwilioConfig{}, "x"))
}
