package notification

import "strconv"

// Channel represents a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Trigger names a business event that may cause a notification to be sent.
type Trigger string

const (
	TriggerInvoiceReady   Trigger = "invoice_ready"
	TriggerOrderShipped   Trigger = "order_shipped"
	TriggerOrderDelivered Trigger = "order_delivered"
	TriggerNewRelease     Trigger = "new_release"
)

// Settings is the singleton notification configuration. It is read fresh on
// every dispatch and mutated only by the settings editor, never by this
// engine.
type Settings struct {
	ID               string `json:"id,omitempty"`
	EmailEnabled     bool   `json:"email_enabled"`
	SMSEnabled       bool   `json:"sms_enabled"`
	EmailFromName    string `json:"email_from_name"`
	EmailFromAddress string `json:"email_from_address"`
	EmailReplyTo     string `json:"email_reply_to,omitempty"`
	SMSFromName      string `json:"sms_from_name,omitempty"`

	SendInvoiceNotifications    bool `json:"send_invoice_notifications"`
	SendShippingNotifications   bool `json:"send_shipping_notifications"`
	SendDeliveryNotifications   bool `json:"send_delivery_notifications"`
	SendNewReleaseNotifications bool `json:"send_new_release_notifications"`
}

// TriggerEnabled reports whether the settings allow sends for the given
// trigger. Unknown triggers are permitted — the caller is expected to warn
// so typos surface in the logs instead of silently sending.
func (s *Settings) TriggerEnabled(t Trigger) (enabled, known bool) {
	switch t {
	case TriggerInvoiceReady:
		return s.SendInvoiceNotifications, true
	case TriggerOrderShipped:
		return s.SendShippingNotifications, true
	case TriggerOrderDelivered:
		return s.SendDeliveryNotifications, true
	case TriggerNewRelease:
		return s.SendNewReleaseNotifications, true
	default:
		return true, false
	}
}

// Template is one authored message template, unique per (type, trigger).
// Email templates carry Subject/HTMLBody/TextBody; SMS templates carry Body.
type Template struct {
	ID       string  `json:"id"`
	Type     Channel `json:"type"`
	Trigger  Trigger `json:"trigger"`
	Enabled  bool    `json:"enabled"`
	Subject  string  `json:"subject,omitempty"`
	HTMLBody string  `json:"html_body,omitempty"`
	TextBody string  `json:"text_body,omitempty"`
	Body     string  `json:"body,omitempty"`
}

// Data is the per-call context bag supplying placeholder values. A missing
// key is the single representation of "absent"; an empty string is present
// but falsy for conditional blocks.
type Data map[string]string

// Truthy reports whether the named variable is present and non-empty.
func (d Data) Truthy(name string) bool {
	v, ok := d[name]
	return ok && v != ""
}

// DataFromJSON flattens a decoded JSON object into a Data map. Strings pass
// through, numbers and booleans are formatted, null and unsupported values
// are dropped (absent).
func DataFromJSON(m map[string]any) Data {
	d := make(Data, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			d[k] = val
		case float64:
			d[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			d[k] = strconv.FormatBool(val)
		}
	}
	return d
}

// Options tweaks a single dispatch call.
type Options struct {
	EmailOnly  bool   `json:"email_only,omitempty"`
	SMSOnly    bool   `json:"sms_only,omitempty"`
	ForceEmail string `json:"force_email,omitempty"`
	ForcePhone string `json:"force_phone,omitempty"`
}

// Outcome is the result of one attempted send on one channel.
type Outcome struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Result reports both channels independently. A nil channel outcome means
// that channel was not attempted (disabled by options or the channel master
// switch).
type Result struct {
	Email *Outcome `json:"email,omitempty"`
	SMS   *Outcome `json:"sms,omitempty"`
}
