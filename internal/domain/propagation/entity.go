package propagation

// Result counts the pages and documents one paged job touched.
type Result struct {
	Pages     int `json:"pages"`
	Documents int `json:"documents"`
}

// Page records one committed page.
func (r *Result) Page(docs int) {
	r.Pages++
	r.Documents += docs
}

// TemplateResult reports the three passes of a template propagation.
type TemplateResult struct {
	Template               string `json:"template"`
	SubscriptionActivities Result `json:"subscriptionActivities"`
	Subscriptions          Result `json:"subscriptions"`
	Activities             Result `json:"activities"`
}
