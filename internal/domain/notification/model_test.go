package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"noticore/internal/domain/notification"
)

func TestDataFromJSON(t *testing.T) {
	data := notification.DataFromJSON(map[string]any{
		"customer_name":  "Jane",
		"total_amount":   54.97,
		"invoice_number": float64(1042),
		"paid":           true,
		"tracking":       nil,
		"items":          []any{"unsupported"},
	})

	assert.Equal(t, "Jane", data["customer_name"])
	assert.Equal(t, "54.97", data["total_amount"])
	assert.Equal(t, "1042", data["invoice_number"])
	assert.Equal(t, "true", data["paid"])

	_, hasTracking := data["tracking"]
	assert.False(t, hasTracking, "null values are absent, not empty")
	_, hasItems := data["items"]
	assert.False(t, hasItems)
}

func TestDataTruthy(t *testing.T) {
	data := notification.Data{"a": "x", "b": ""}

	assert.True(t, data.Truthy("a"))
	assert.False(t, data.Truthy("b"), "present but empty is falsy")
	assert.False(t, data.Truthy("c"), "absent is falsy")
}

func TestTriggerEnabledMapping(t *testing.T) {
	s := &notification.Settings{
		SendInvoiceNotifications:    true,
		SendShippingNotifications:   false,
		SendDeliveryNotifications:   true,
		SendNewReleaseNotifications: false,
	}

	tests := []struct {
		trigger notification.Trigger
		enabled bool
		known   bool
	}{
		{notification.TriggerInvoiceReady, true, true},
		{notification.TriggerOrderShipped, false, true},
		{notification.TriggerOrderDelivered, true, true},
		{notification.TriggerNewRelease, false, true},
		{"mystery_event", true, false},
	}

	for _, tt := range tests {
		enabled, known := s.TriggerEnabled(tt.trigger)
		assert.Equal(t, tt.enabled, enabled, "trigger %s", tt.trigger)
		assert.Equal(t, tt.known, known, "trigger %s", tt.trigger)
	}
}
