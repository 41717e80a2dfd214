package notification_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticore/internal/domain/notification"
)

func TestSendTestEmail(t *testing.T) {
	// Trigger disabled and template disabled — test sends bypass both.
	settings := allEnabledSettings()
	settings.SendInvoiceNotifications = false

	tpl := invoiceEmailTemplate()
	tpl.Enabled = false

	store := &fakeStore{settings: settings, templates: []*notification.Template{tpl}}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	outcome := d.SendTest(context.Background(), tpl.ID, "author@example.com")

	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)

	require.Len(t, emailSender.sent, 1)
	sent := emailSender.sent[0]
	assert.Equal(t, "author@example.com", sent.To)
	assert.True(t, strings.HasPrefix(sent.Subject, "[TEST] "), "subject %q missing test marker", sent.Subject)
	assert.Equal(t, "[TEST] Invoice INV-1042", sent.Subject, "sample data fills the placeholders")

	require.Len(t, store.logs, 1, "test sends are logged like real sends")
	assert.Equal(t, notification.StatusSent, store.logs[0].Status)
	assert.Empty(t, store.logs[0].CustomerID, "synthetic sample ids carry no linkage")
}

func TestSendTestSMS(t *testing.T) {
	store := &fakeStore{
		settings:  allEnabledSettings(),
		templates: []*notification.Template{invoiceSMSTemplate()},
	}
	smsSender := &fakeSMSSender{id: "SM1"}
	d := newDispatcher(store, &fakeEmailSender{}, smsSender)

	outcome := d.SendTest(context.Background(), "tpl_sms_invoice", "5551234567")

	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)

	require.Len(t, smsSender.sent, 1)
	assert.True(t, strings.HasPrefix(smsSender.sent[0].Body, "[TEST] "))
	assert.Contains(t, smsSender.sent[0].Body, "INV-1042")

	require.Len(t, store.logs, 1)
	assert.Equal(t, string(notification.ChannelSMS), store.logs[0].Channel)
}

func TestSendTestRequiresSettings(t *testing.T) {
	store := &fakeStore{templates: []*notification.Template{invoiceEmailTemplate()}}
	emailSender := &fakeEmailSender{id: "msg-1"}
	d := newDispatcher(store, emailSender, &fakeSMSSender{})

	outcome := d.SendTest(context.Background(), "tpl_email_invoice", "author@example.com")

	assert.False(t, outcome.Success)
	assert.Equal(t, "Notification settings not found", outcome.Error)
	assert.Empty(t, emailSender.sent)
	assert.Empty(t, store.logs)
}

func TestSendTestUnknownTemplate(t *testing.T) {
	store := &fakeStore{settings: allEnabledSettings()}
	d := newDispatcher(store, &fakeEmailSender{}, &fakeSMSSender{})

	outcome := d.SendTest(context.Background(), "tpl_missing", "author@example.com")

	assert.False(t, outcome.Success)
	assert.Equal(t, "Template not found or disabled", outcome.Error)
}

func TestSendTestProviderFailureLogged(t *testing.T) {
	store := &fakeStore{
		settings:  allEnabledSettings(),
		templates: []*notification.Template{invoiceEmailTemplate()},
	}
	d := newDispatcher(store, &fakeEmailSender{err: notification.ErrNotConfigured}, &fakeSMSSender{})

	outcome := d.SendTest(context.Background(), "tpl_email_invoice", "author@example.com")

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "not configured")
	require.Len(t, store.logs, 1)
	assert.Equal(t, notification.StatusFailed, store.logs[0].Status)
}

func TestSampleDataCoversRecognizedFamilies(t *testing.T) {
	data := notification.SampleData()

	for _, key := range []string{
		"customer_name", "customer_email", "customer_phone", "customer_id",
		"invoice_number", "total_amount", "items_list", "items_list_text",
		"invoice_url", "invoice_id", "due_date",
		"tracking_number", "carrier", "tracking_url", "shipment_id",
		"item_name", "item_description", "item_price", "park", "image_url",
		"request_url", "unsubscribe_url", "release_id",
	} {
		assert.True(t, data.Truthy(key), "sample data missing %s", key)
	}
}
