package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticore/internal/domain/notification"
	"noticore/internal/template"
)

// fakeStore implements TemplateStore, SettingsStore, and LogStore in
// memory.
type fakeStore struct {
	settings    *notification.Settings
	settingsErr error
	templates   []*notification.Template
	logs        []*notification.DeliveryLog
	logErr      error
}

func (f *fakeStore) GetTemplate(_ context.Context, channel notification.Channel, trigger notification.Trigger) (*notification.Template, error) {
	for _, tpl := range f.templates {
		if tpl.Type == channel && tpl.Trigger == trigger {
			return tpl, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetTemplateByID(_ context.Context, id string) (*notification.Template, error) {
	for _, tpl := range f.templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetSettings(_ context.Context) (*notification.Settings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeStore) CreateLog(_ context.Context, entry *notification.DeliveryLog) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeStore) GetLogByID(_ context.Context, id string) (*notification.DeliveryLog, error) {
	for _, entry := range f.logs {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListLogs(_ context.Context, _ notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	return f.logs, len(f.logs), nil
}

type fakeEmailSender struct {
	id   string
	err  error
	sent []*notification.EmailMessage
}

func (f *fakeEmailSender) Send(_ context.Context, msg *notification.EmailMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return f.id, nil
}

type fakeSMSSender struct {
	id   string
	err  error
	sent []*notification.SMSMessage
}

func (f *fakeSMSSender) Send(_ context.Context, msg *notification.SMSMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return f.id, nil
}

func allEnabledSettings() *notification.Settings {
	return &notification.Settings{
		EmailEnabled:                true,
		SMSEnabled:                  true,
		EmailFromName:               "Records",
		EmailFromAddress:            "noreply@example.com",
		EmailReplyTo:                "shop@example.com",
		SendInvoiceNotifications:    true,
		SendShippingNotifications:   true,
		SendDeliveryNotifications:   true,
		SendNewReleaseNotifications: true,
	}
}

func invoiceEmailTemplate() *notification.Template {
	return &notification.Template{
		ID:       "tpl_email_invoice",
		Type:     notification.ChannelEmail,
		Trigger:  notification.TriggerInvoiceReady,
		Enabled:  true,
		Subject:  "Invoice {{invoice_number}}",
		HTMLBody: "<p>Hi {{customer_name}}, invoice {{invoice_number}} is ready.</p>",
		TextBody: "Hi {{customer_name}}, invoice {{invoice_number}} is ready.",
	}
}

func invoiceSMSTemplate() *notification.Template {
	return &notification.Template{
		ID:      "tpl_sms_invoice",
		Type:    notification.ChannelSMS,
		Trigger: notification.TriggerInvoiceReady,
		Enabled: true,
		Body:    "Invoice {{invoice_number}} is ready: {{invoice_url}}",
	}
}

func newDispatcher(store *fakeStore, emailSender *fakeEmailSender, smsSender *fakeSMSSender) *notification.Dispatcher {
	return notification.NewDispatcher(store, store, store, template.Engine{}, emailSender, smsSender)
}

func TestDispatchNoSettings(t *testing.T) {
	store := &fakeStore{templates: []*notification.Template{invoiceEmailTemplate()}}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{"customer_email": "a@b.com"}, notification.Options{})

	require.NotNil(t, res.Email)
	require.NotNil(t, res.SMS)
	assert.False(t, res.Email.Success)
	assert.False(t, res.SMS.Success)
	assert.Equal(t, "Notification settings not found", res.Email.Error)
	assert.Equal(t, "Notification settings not found", res.SMS.Error)
	assert.Empty(t, emailSender.sent, "no provider call without settings")
	assert.Empty(t, store.logs, "no log entries without settings")
}

func TestDispatchSettingsLoadErrorTreatedAsAbsent(t *testing.T) {
	store := &fakeStore{settingsErr: errors.New("connection reset")}
	d := newDispatcher(store, &fakeEmailSender{}, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{}, notification.Options{})

	assert.Equal(t, "Notification settings not found", res.Email.Error)
	assert.Equal(t, "Notification settings not found", res.SMS.Error)
}

func TestDispatchTriggerDisabled(t *testing.T) {
	settings := allEnabledSettings()
	settings.SendInvoiceNotifications = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{invoiceEmailTemplate(), invoiceSMSTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	smsSender := &fakeSMSSender{id: "SM1"}
	d := newDispatcher(store, emailSender, smsSender)

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_phone": "5551234567",
	}, notification.Options{})

	assert.Equal(t, "Notifications are disabled for this trigger", res.Email.Error)
	assert.Equal(t, "Notifications are disabled for this trigger", res.SMS.Error)
	assert.Empty(t, emailSender.sent)
	assert.Empty(t, smsSender.sent)
	assert.Empty(t, store.logs, "disabled trigger must create zero log entries")
}

func TestDispatchEmailSuccess(t *testing.T) {
	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{invoiceEmailTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_name":  "Jane",
		"customer_id":    "cus_1",
		"invoice_number": "INV-1",
		"invoice_id":     "inv_1",
	}, notification.Options{})

	require.NotNil(t, res.Email)
	assert.True(t, res.Email.Success)
	assert.Equal(t, "msg-1", res.Email.ExternalID)
	assert.Nil(t, res.SMS, "sms channel disabled — not attempted")

	require.Len(t, emailSender.sent, 1)
	sent := emailSender.sent[0]
	assert.Equal(t, "a@b.com", sent.To)
	assert.Equal(t, "Invoice INV-1", sent.Subject)
	assert.Equal(t, "Records", sent.FromName)
	assert.Equal(t, "noreply@example.com", sent.FromAddress)
	assert.Equal(t, "shop@example.com", sent.ReplyTo)

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "Invoice INV-1", entry.Subject)
	assert.Equal(t, notification.StatusSent, entry.Status)
	assert.Equal(t, "msg-1", entry.ExternalID)
	assert.Equal(t, "cus_1", entry.CustomerID)
	assert.Equal(t, "inv_1", entry.InvoiceID)
	assert.Equal(t, "tpl_email_invoice", entry.TemplateID)
}

func TestDispatchNoEmailAddress(t *testing.T) {
	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{invoiceEmailTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"invoice_number": "INV-1",
	}, notification.Options{})

	require.NotNil(t, res.Email)
	assert.False(t, res.Email.Success)
	assert.Equal(t, "No email address", res.Email.Error)
	assert.Empty(t, emailSender.sent, "no SMTP call without a recipient")
	assert.Empty(t, store.logs, "no log entry without a recipient")
}

func TestDispatchTemplateMissingOrDisabled(t *testing.T) {
	disabled := invoiceEmailTemplate()
	disabled.Enabled = false

	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{disabled},
	}
	d := newDispatcher(store, &fakeEmailSender{}, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
	}, notification.Options{})

	assert.Equal(t, "Template not found or disabled", res.Email.Error)
	assert.Empty(t, store.logs)

	// Missing entirely behaves the same
	store.templates = nil
	res = d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
	}, notification.Options{})
	assert.Equal(t, "Template not found or disabled", res.Email.Error)
}

func TestDispatchProviderFailureIsLogged(t *testing.T) {
	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{invoiceEmailTemplate()},
	}
	emailSender := &fakeEmailSender{err: errors.New("smtp send: connection refused")}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"invoice_number": "INV-1",
	}, notification.Options{})

	require.NotNil(t, res.Email)
	assert.False(t, res.Email.Success)
	assert.Contains(t, res.Email.Error, "connection refused")

	require.Len(t, store.logs, 1, "attempted sends must be auditable")
	assert.Equal(t, notification.StatusFailed, store.logs[0].Status)
	assert.Contains(t, store.logs[0].ErrorMessage, "connection refused")
}

func TestDispatchPartialSuccess(t *testing.T) {
	store := &fakeStore{
		settings:  allEnabledSettings(),
		templates: []*notification.Template{invoiceEmailTemplate(), invoiceSMSTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	smsSender := &fakeSMSSender{err: notification.ErrNotConfigured}
	d := newDispatcher(store, emailSender, smsSender)

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_phone": "5551234567",
		"invoice_number": "INV-1",
	}, notification.Options{})

	require.NotNil(t, res.Email)
	require.NotNil(t, res.SMS)
	assert.True(t, res.Email.Success)
	assert.False(t, res.SMS.Success)
	assert.Contains(t, res.SMS.Error, "not configured")
	require.Len(t, store.logs, 2, "each channel attempt is logged independently")
}

func TestDispatchForceRecipients(t *testing.T) {
	store := &fakeStore{
		settings:  allEnabledSettings(),
		templates: []*notification.Template{invoiceEmailTemplate(), invoiceSMSTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	smsSender := &fakeSMSSender{id: "SM1"}
	d := newDispatcher(store, emailSender, smsSender)

	d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_phone": "5551234567",
	}, notification.Options{
		ForceEmail: "override@example.com",
		ForcePhone: "5559876543",
	})

	require.Len(t, emailSender.sent, 1)
	assert.Equal(t, "override@example.com", emailSender.sent[0].To)
	require.Len(t, smsSender.sent, 1)
	assert.Equal(t, "5559876543", smsSender.sent[0].To)
}

func TestDispatchChannelOnlyOptions(t *testing.T) {
	store := &fakeStore{
		settings:  allEnabledSettings(),
		templates: []*notification.Template{invoiceEmailTemplate(), invoiceSMSTemplate()},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	smsSender := &fakeSMSSender{id: "SM1"}
	d := newDispatcher(store, emailSender, smsSender)

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_phone": "5551234567",
	}, notification.Options{EmailOnly: true})

	assert.NotNil(t, res.Email)
	assert.Nil(t, res.SMS)
	assert.Empty(t, smsSender.sent)

	res = d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
		"customer_phone": "5551234567",
	}, notification.Options{SMSOnly: true})

	assert.Nil(t, res.Email)
	assert.NotNil(t, res.SMS)
	require.Len(t, emailSender.sent, 1, "email only sent for the first dispatch")
}

func TestDispatchUnknownTriggerDefaultsEnabled(t *testing.T) {
	store := &fakeStore{
		settings: allEnabledSettings(),
		templates: []*notification.Template{{
			ID:      "tpl_custom",
			Type:    notification.ChannelEmail,
			Trigger: "custom_event",
			Enabled: true,
			Subject: "Hello {{customer_name}}",
		}},
	}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), "custom_event", notification.Data{
		"customer_email": "a@b.com",
		"customer_name":  "Jane",
	}, notification.Options{EmailOnly: true})

	require.NotNil(t, res.Email)
	assert.True(t, res.Email.Success)
	require.Len(t, emailSender.sent, 1)
	assert.Equal(t, "Hello Jane", emailSender.sent[0].Subject)
}

func TestDispatchConditionalBlockInBody(t *testing.T) {
	tpl := invoiceEmailTemplate()
	tpl.HTMLBody = "<p>Invoice ready.</p>{{#if unsubscribe_url}}<a href=\"{{unsubscribe_url}}\">Unsubscribe</a>{{/if}}"

	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{settings: settings, templates: []*notification.Template{tpl}}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email":  "a@b.com",
		"unsubscribe_url": "https://example.com/u/1",
	}, notification.Options{})

	require.Len(t, emailSender.sent, 1)
	assert.Equal(t, `<p>Invoice ready.</p><a href="https://example.com/u/1">Unsubscribe</a>`, emailSender.sent[0].HTML)

	d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
	}, notification.Options{})

	require.Len(t, emailSender.sent, 2)
	assert.Equal(t, "<p>Invoice ready.</p>", emailSender.sent[1].HTML)
}

func TestDispatchLogWriteFailureDoesNotChangeOutcome(t *testing.T) {
	settings := allEnabledSettings()
	settings.SMSEnabled = false
	store := &fakeStore{
		settings:  settings,
		templates: []*notification.Template{invoiceEmailTemplate()},
		logErr:    errors.New("insert failed"),
	}
	d := newDispatcher(store, &fakeEmailSender{id: "msg-1"}, &fakeSMSSender{})

	res := d.Dispatch(context.Background(), notification.TriggerInvoiceReady, notification.Data{
		"customer_email": "a@b.com",
	}, notification.Options{})

	require.NotNil(t, res.Email)
	assert.True(t, res.Email.Success, "a failed audit write must not fail a delivered send")
}
