package notification

import (
	"context"
	"log/slog"
)

// testPrefix marks test sends so recipients and the audit trail can tell
// them apart from real deliveries.
const testPrefix = "[TEST] "

// SampleData returns the fixed context used by test sends. It covers every
// recognized variable family so template authors can preview any template.
func SampleData() Data {
	return Data{
		"customer_name":    "Jane Doe",
		"customer_email":   "jane@example.com",
		"customer_phone":   "+15551234567",
		"customer_id":      "cus_sample",
		"invoice_number":   "INV-1042",
		"total_amount":     "54.97",
		"items_list":       "<ul><li>Sample Record - $29.99</li><li>Another Record - $24.98</li></ul>",
		"items_list_text":  "Sample Record - $29.99\nAnother Record - $24.98",
		"invoice_url":      "https://example.com/invoices/inv_sample",
		"invoice_id":       "inv_sample",
		"due_date":         "January 15, 2026",
		"tracking_number":  "1Z999AA10123456784",
		"carrier":          "UPS",
		"tracking_url":     "https://example.com/track/1Z999AA10123456784",
		"shipment_id":      "shp_sample",
		"item_name":        "Sample Record",
		"item_description": "180g reissue, near mint",
		"item_price":       "29.99",
		"park":             "Main Street",
		"image_url":        "https://example.com/images/sample.jpg",
		"request_url":      "https://example.com/requests/req_sample",
		"unsubscribe_url":  "https://example.com/unsubscribe/sample",
		"release_id":       "rel_sample",
	}
}

// SendTest renders a template against the sample context and sends it to
// the given recipient with a [TEST] marker. It bypasses the trigger and
// template enablement gates — this path exists for template authoring, not
// end-user delivery — but still requires settings (for sender identity) and
// a configured provider, and it logs exactly like a normal send.
func (d *Dispatcher) SendTest(ctx context.Context, templateID, recipient string) *Outcome {
	settings, err := d.settings.GetSettings(ctx)
	if err != nil {
		slog.Error("loading notification settings failed", "template_id", templateID, "error", err)
		settings = nil
	}
	if settings == nil {
		return &Outcome{Error: reasonNoSettings}
	}

	tpl, err := d.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		slog.Error("loading template failed", "template_id", templateID, "error", err)
		return &Outcome{Error: reasonNoTemplate}
	}
	if tpl == nil {
		return &Outcome{Error: reasonNoTemplate}
	}

	data := SampleData()

	var (
		externalID string
		sendErr    error
		entry      *DeliveryLog
	)

	switch tpl.Type {
	case ChannelSMS:
		msg := &SMSMessage{
			To:   recipient,
			Body: testPrefix + d.renderer.Render(tpl.Body, data),
		}
		externalID, sendErr = d.sms.Send(ctx, msg)
		entry = &DeliveryLog{
			Recipient:  recipient,
			Channel:    string(ChannelSMS),
			Body:       msg.Body,
			ExternalID: externalID,
		}
	default:
		msg := &EmailMessage{
			To:          recipient,
			Subject:     testPrefix + d.renderer.Render(tpl.Subject, data),
			HTML:        d.renderer.Render(tpl.HTMLBody, data),
			Text:        d.renderer.Render(tpl.TextBody, data),
			FromName:    settings.EmailFromName,
			FromAddress: settings.EmailFromAddress,
			ReplyTo:     settings.EmailReplyTo,
		}
		externalID, sendErr = d.email.Send(ctx, msg)
		entry = &DeliveryLog{
			Recipient:  recipient,
			Channel:    string(ChannelEmail),
			Subject:    msg.Subject,
			Body:       msg.HTML,
			ExternalID: externalID,
		}
	}

	// Sample ids are synthetic, so the log row carries no business linkage.
	d.writeLog(ctx, tpl, Data{}, entry, sendErr)

	if sendErr != nil {
		slog.Error("test send failed", "template_id", templateID, "to", recipient, "error", sendErr)
		return &Outcome{Error: sendErr.Error()}
	}
	return &Outcome{Success: true, ExternalID: externalID}
}
