package payroll

import "errors"

var (
	ErrNoRecipients = errors.New("report has no recipients")
	ErrEmptyReport  = errors.New("report has no employees")
)
