package notification

import (
	"context"
	"log/slog"
	"time"
)

// Failure reasons reported through channel outcomes. These are surfaced to
// API callers, so they read as messages rather than error codes.
const (
	reasonNoSettings      = "Notification settings not found"
	reasonTriggerDisabled = "Notifications are disabled for this trigger"
	reasonNoTemplate      = "Template not found or disabled"
	reasonNoEmail         = "No email address"
	reasonNoPhone         = "No phone number"
)

// Dispatcher orchestrates a single notification dispatch: settings gate →
// template load → render → provider send → delivery log. It never returns
// an error across the dispatch boundary; every failure is reported inside
// the per-channel outcomes.
type Dispatcher struct {
	templates TemplateStore
	settings  SettingsStore
	logs      LogStore
	renderer  Renderer
	email     EmailSender
	sms       SMSSender
}

// NewDispatcher creates a dispatcher with explicit dependencies. Stores,
// renderer, and senders are interfaces so tests can substitute fakes.
func NewDispatcher(
	templates TemplateStore,
	settings SettingsStore,
	logs LogStore,
	renderer Renderer,
	email EmailSender,
	sms SMSSender,
) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		settings:  settings,
		logs:      logs,
		renderer:  renderer,
		email:     email,
		sms:       sms,
	}
}

// Dispatch sends the notifications configured for a trigger. Settings are
// loaded fresh on every call. The email and SMS branches are independent:
// one channel's failure never blocks the other, and partial success is a
// normal, reportable outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, trigger Trigger, data Data, opts Options) *Result {
	start := time.Now()

	settings, err := d.settings.GetSettings(ctx)
	if err != nil {
		slog.Error("loading notification settings failed", "trigger", trigger, "error", err)
		settings = nil
	}
	if settings == nil {
		return &Result{
			Email: &Outcome{Error: reasonNoSettings},
			SMS:   &Outcome{Error: reasonNoSettings},
		}
	}

	enabled, known := settings.TriggerEnabled(trigger)
	if !known {
		slog.Warn("unknown trigger passed the settings gate", "trigger", trigger)
	}
	if !enabled {
		return &Result{
			Email: &Outcome{Error: reasonTriggerDisabled},
			SMS:   &Outcome{Error: reasonTriggerDisabled},
		}
	}

	res := &Result{}

	if !opts.SMSOnly && settings.EmailEnabled {
		res.Email = d.sendEmail(ctx, settings, trigger, data, opts.ForceEmail)
	}
	if !opts.EmailOnly && settings.SMSEnabled {
		res.SMS = d.sendSMS(ctx, trigger, data, opts.ForcePhone)
	}

	slog.Info("dispatch complete",
		"trigger", trigger,
		"email", outcomeState(res.Email),
		"sms", outcomeState(res.SMS),
		"duration", time.Since(start),
	)

	return res
}

// sendEmail runs the email branch: template load, recipient resolution,
// render, provider call, delivery log.
func (d *Dispatcher) sendEmail(ctx context.Context, settings *Settings, trigger Trigger, data Data, forceEmail string) *Outcome {
	tpl, err := d.templates.GetTemplate(ctx, ChannelEmail, trigger)
	if err != nil {
		slog.Error("loading email template failed", "trigger", trigger, "error", err)
		return &Outcome{Error: reasonNoTemplate}
	}
	if tpl == nil || !tpl.Enabled {
		return &Outcome{Error: reasonNoTemplate}
	}

	to := forceEmail
	if to == "" {
		to = data["customer_email"]
	}
	if to == "" {
		return &Outcome{Error: reasonNoEmail}
	}

	msg := &EmailMessage{
		To:          to,
		Subject:     d.renderer.Render(tpl.Subject, data),
		HTML:        d.renderer.Render(tpl.HTMLBody, data),
		Text:        d.renderer.Render(tpl.TextBody, data),
		FromName:    settings.EmailFromName,
		FromAddress: settings.EmailFromAddress,
		ReplyTo:     settings.EmailReplyTo,
	}

	externalID, sendErr := d.email.Send(ctx, msg)
	d.writeLog(ctx, tpl, data, &DeliveryLog{
		Recipient:  to,
		Channel:    string(ChannelEmail),
		Subject:    msg.Subject,
		Body:       msg.HTML,
		ExternalID: externalID,
	}, sendErr)

	if sendErr != nil {
		slog.Error("email delivery failed", "trigger", trigger, "to", to, "error", sendErr)
		return &Outcome{Error: sendErr.Error()}
	}
	return &Outcome{Success: true, ExternalID: externalID}
}

// sendSMS runs the SMS branch, symmetric to sendEmail.
func (d *Dispatcher) sendSMS(ctx context.Context, trigger Trigger, data Data, forcePhone string) *Outcome {
	tpl, err := d.templates.GetTemplate(ctx, ChannelSMS, trigger)
	if err != nil {
		slog.Error("loading sms template failed", "trigger", trigger, "error", err)
		return &Outcome{Error: reasonNoTemplate}
	}
	if tpl == nil || !tpl.Enabled {
		return &Outcome{Error: reasonNoTemplate}
	}

	to := forcePhone
	if to == "" {
		to = data["customer_phone"]
	}
	if to == "" {
		return &Outcome{Error: reasonNoPhone}
	}

	msg := &SMSMessage{
		To:   to,
		Body: d.renderer.Render(tpl.Body, data),
	}

	externalID, sendErr := d.sms.Send(ctx, msg)
	d.writeLog(ctx, tpl, data, &DeliveryLog{
		Recipient:  to,
		Channel:    string(ChannelSMS),
		Body:       msg.Body,
		ExternalID: externalID,
	}, sendErr)

	if sendErr != nil {
		slog.Error("sms delivery failed", "trigger", trigger, "to", to, "error", sendErr)
		return &Outcome{Error: sendErr.Error()}
	}
	return &Outcome{Success: true, ExternalID: externalID}
}

// writeLog finalizes and persists one delivery record. A log write failure
// never changes the send outcome — the send already happened.
func (d *Dispatcher) writeLog(ctx context.Context, tpl *Template, data Data, entry *DeliveryLog, sendErr error) {
	entry.Status = StatusSent
	if sendErr != nil {
		entry.Status = StatusFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if tpl != nil {
		entry.TemplateID = tpl.ID
	}
	entry.CustomerID = data["customer_id"]
	entry.InvoiceID = data["invoice_id"]
	entry.ShipmentID = data["shipment_id"]
	entry.ReleaseID = data["release_id"]

	if err := d.logs.CreateLog(ctx, entry); err != nil {
		slog.Error("writing delivery log failed",
			"channel", entry.Channel,
			"recipient", entry.Recipient,
			"error", err,
		)
	}
}

func outcomeState(o *Outcome) string {
	switch {
	case o == nil:
		return "skipped"
	case o.Success:
		return "sent"
	default:
		return "failed"
	}
}
