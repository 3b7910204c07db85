package payroll

import "context"

type Service interface {
	BuildReport(ctx context.Context, req BuildReportRequest) (*Report, error)
	RenderXLSX(report *Report) (*Artifact, error)
	RenderCSV(report *Report) (*Artifact, error)
	// Deliver renders, stores and mails the report to the given addresses.
	Deliver(ctx context.Context, report *Report, to []string) error
}
