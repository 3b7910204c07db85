package payroll

import "context"

type Repository interface {
	// GetInit returns nil when no Init document exists for the month.
	GetInit(ctx context.Context, officeID string, year, month int) (*Init, error)
	// MergeLabels merges labels (phone → day → label) into the month's Init document.
	MergeLabels(ctx context.Context, office, officeID string, year, month int, labels map[string]map[int]string) error
	ListRecipients(ctx context.Context, report string) ([]Recipient, error)
}
