package notification

import "context"

// TemplateStore defines read-only access to authored templates.
// Implementations live in infra/store. Templates are authored elsewhere;
// this engine never writes them.
type TemplateStore interface {
	// GetTemplate retrieves the template for a (channel, trigger) pair.
	// Returns nil, nil when no template exists.
	GetTemplate(ctx context.Context, channel Channel, trigger Trigger) (*Template, error)

	// GetTemplateByID retrieves a template by its id, for the test-send
	// path. Returns nil, nil when not found.
	GetTemplateByID(ctx context.Context, id string) (*Template, error)
}

// SettingsStore defines read-only access to the notification settings
// singleton.
type SettingsStore interface {
	// GetSettings returns the settings row, or nil, nil when none exists.
	// Callers must treat an absent row as everything disabled.
	GetSettings(ctx context.Context) (*Settings, error)
}

// LogStore persists the delivery audit trail.
type LogStore interface {
	// CreateLog appends one delivery record. Records are never updated.
	CreateLog(ctx context.Context, entry *DeliveryLog) error

	// GetLogByID retrieves a single delivery record.
	GetLogByID(ctx context.Context, id string) (*DeliveryLog, error)

	// ListLogs retrieves delivery records with pagination and filtering.
	ListLogs(ctx context.Context, filter ListFilter) ([]*DeliveryLog, int, error)
}
