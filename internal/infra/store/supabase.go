package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"noticore/internal/common"
	"noticore/internal/domain/notification"
)

const (
	templatesTable = "notification_templates"
	settingsTable  = "notification_settings"
	logsTable      = "notification_logs"
)

var (
	_ notification.TemplateStore = (*SupabaseStore)(nil)
	_ notification.SettingsStore = (*SupabaseStore)(nil)
	_ notification.LogStore      = (*SupabaseStore)(nil)
)

// SupabaseStore implements the template, settings, and delivery log stores
// using the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// templateRow is the PostgREST representation of a template record.
type templateRow struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Trigger  string  `json:"trigger"`
	Enabled  bool    `json:"enabled"`
	Subject  *string `json:"subject,omitempty"`
	HTMLBody *string `json:"html_body,omitempty"`
	TextBody *string `json:"text_body,omitempty"`
	Body     *string `json:"body,omitempty"`
}

// GetTemplate retrieves the template for a (channel, trigger) pair.
// Returns nil, nil when no template exists.
func (s *SupabaseStore) GetTemplate(ctx context.Context, channel notification.Channel, trigger notification.Trigger) (*notification.Template, error) {
	data, _, err := s.client.From(templatesTable).
		Select("*", "exact", false).
		Eq("type", string(channel)).
		Eq("trigger", string(trigger)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}

	var rows []templateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToTemplate(&rows[0]), nil
}

// GetTemplateByID retrieves a template by id. Returns nil, nil when not
// found.
func (s *SupabaseStore) GetTemplateByID(ctx context.Context, id string) (*notification.Template, error) {
	data, _, err := s.client.From(templatesTable).
		Select("*", "exact", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching template by id: %w", err)
	}

	var rows []templateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToTemplate(&rows[0]), nil
}

// settingsRow is the PostgREST representation of the settings singleton.
type settingsRow struct {
	ID               string  `json:"id"`
	EmailEnabled     bool    `json:"email_enabled"`
	SMSEnabled       bool    `json:"sms_enabled"`
	EmailFromName    *string `json:"email_from_name,omitempty"`
	EmailFromAddress *string `json:"email_from_address,omitempty"`
	EmailReplyTo     *string `json:"email_reply_to,omitempty"`
	SMSFromName      *string `json:"sms_from_name,omitempty"`

	SendInvoiceNotifications    bool `json:"send_invoice_notifications"`
	SendShippingNotifications   bool `json:"send_shipping_notifications"`
	SendDeliveryNotifications   bool `json:"send_delivery_notifications"`
	SendNewReleaseNotifications bool `json:"send_new_release_notifications"`
}

// GetSettings returns the settings singleton, or nil, nil when the table is
// empty.
func (s *SupabaseStore) GetSettings(ctx context.Context) (*notification.Settings, error) {
	data, _, err := s.client.From(settingsTable).
		Select("*", "exact", false).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching notification settings: %w", err)
	}

	var rows []settingsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing notification settings: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	settings := &notification.Settings{
		ID:                          row.ID,
		EmailEnabled:                row.EmailEnabled,
		SMSEnabled:                  row.SMSEnabled,
		SendInvoiceNotifications:    row.SendInvoiceNotifications,
		SendShippingNotifications:   row.SendShippingNotifications,
		SendDeliveryNotifications:   row.SendDeliveryNotifications,
		SendNewReleaseNotifications: row.SendNewReleaseNotifications,
	}
	if row.EmailFromName != nil {
		settings.EmailFromName = *row.EmailFromName
	}
	if row.EmailFromAddress != nil {
		settings.EmailFromAddress = *row.EmailFromAddress
	}
	if row.EmailReplyTo != nil {
		settings.EmailReplyTo = *row.EmailReplyTo
	}
	if row.SMSFromName != nil {
		settings.SMSFromName = *row.SMSFromName
	}

	return settings, nil
}

// logRow is the PostgREST representation of a delivery log record.
type logRow struct {
	ID           string  `json:"id,omitempty"`
	Recipient    string  `json:"recipient"`
	Channel      string  `json:"channel"`
	Subject      *string `json:"subject,omitempty"`
	Body         string  `json:"body"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	ExternalID   *string `json:"external_id,omitempty"`
	CustomerID   *string `json:"customer_id,omitempty"`
	InvoiceID    *string `json:"invoice_id,omitempty"`
	ShipmentID   *string `json:"shipment_id,omitempty"`
	ReleaseID    *string `json:"release_id,omitempty"`
	TemplateID   *string `json:"template_id,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// CreateLog appends one delivery record and backfills the generated id and
// timestamp.
func (s *SupabaseStore) CreateLog(ctx context.Context, entry *notification.DeliveryLog) error {
	row := logRow{
		Recipient: entry.Recipient,
		Channel:   entry.Channel,
		Body:      entry.Body,
		Status:    string(entry.Status),
	}
	row.Subject = optional(entry.Subject)
	row.ErrorMessage = optional(entry.ErrorMessage)
	row.ExternalID = optional(entry.ExternalID)
	row.CustomerID = optional(entry.CustomerID)
	row.InvoiceID = optional(entry.InvoiceID)
	row.ShipmentID = optional(entry.ShipmentID)
	row.ReleaseID = optional(entry.ReleaseID)
	row.TemplateID = optional(entry.TemplateID)

	data, _, err := s.client.From(logsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}

	var results []logRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		entry.ID = results[0].ID
		if results[0].CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, results[0].CreatedAt); err == nil {
				entry.CreatedAt = t
			}
		}
	}

	return nil
}

// GetLogByID retrieves a single delivery record. Returns nil, nil when not
// found.
func (s *SupabaseStore) GetLogByID(ctx context.Context, id string) (*notification.DeliveryLog, error) {
	data, _, err := s.client.From(logsTable).
		Select("*", "exact", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, common.NewStorageError("fetching delivery log", err.Error())
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing delivery log: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToLog(&rows[0]), nil
}

// ListLogs retrieves delivery records with pagination and filtering, newest
// first.
func (s *SupabaseStore) ListLogs(ctx context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := s.client.From(logsTable).Select("*", "exact", false)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Recipient != "" {
		query = query.Eq("recipient", filter.Recipient)
	}
	if filter.Channel != "" {
		query = query.Eq("channel", filter.Channel)
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, common.NewStorageError("listing delivery logs", err.Error())
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing delivery log list: %w", err)
	}

	logs := make([]*notification.DeliveryLog, len(rows))
	for i, row := range rows {
		logs[i] = rowToLog(&row)
	}

	return logs, int(count), nil
}

func rowToTemplate(row *templateRow) *notification.Template {
	tpl := &notification.Template{
		ID:      row.ID,
		Type:    notification.Channel(row.Type),
		Trigger: notification.Trigger(row.Trigger),
		Enabled: row.Enabled,
	}
	if row.Subject != nil {
		tpl.Subject = *row.Subject
	}
	if row.HTMLBody != nil {
		tpl.HTMLBody = *row.HTMLBody
	}
	if row.TextBody != nil {
		tpl.TextBody = *row.TextBody
	}
	if row.Body != nil {
		tpl.Body = *row.Body
	}
	return tpl
}

func rowToLog(row *logRow) *notification.DeliveryLog {
	entry := &notification.DeliveryLog{
		ID:        row.ID,
		Recipient: row.Recipient,
		Channel:   row.Channel,
		Body:      row.Body,
		Status:    notification.DeliveryStatus(row.Status),
	}
	if row.Subject != nil {
		entry.Subject = *row.Subject
	}
	if row.ErrorMessage != nil {
		entry.ErrorMessage = *row.ErrorMessage
	}
	if row.ExternalID != nil {
		entry.ExternalID = *row.ExternalID
	}
	if row.CustomerID != nil {
		entry.CustomerID = *row.CustomerID
	}
	if row.InvoiceID != nil {
		entry.InvoiceID = *row.InvoiceID
	}
	if row.ShipmentID != nil {
		entry.ShipmentID = *row.ShipmentID
	}
	if row.ReleaseID != nil {
		entry.ReleaseID = *row.ReleaseID
	}
	if row.TemplateID != nil {
		entry.TemplateID = *row.TemplateID
	}
	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			entry.CreatedAt = t
		}
	}
	return entry
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
