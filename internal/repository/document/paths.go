// Package document implements the domain repositories on top of a docstore.Store.
package document

import (
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

// Root collections.
const (
	Offices    = "Offices"
	Profiles   = "Profiles"
	Updates    = "Updates"
	Templates  = "ActivityTemplates"
	Inits      = "Inits"
	Timers     = "Timers"
	Recipients = "Recipients"
)

// Sub-collections, also usable as collection-group names.
const (
	Activities    = "Activities"
	Assignees     = "Assignees"
	Addendum      = "Addendum"
	Monthly       = "Monthly"
	Subscriptions = "Subscriptions"
)

func OfficeRef(officeID string) docstore.Ref {
	return docstore.NewRef(Offices, officeID)
}

func ActivityRef(officeID, activityID string) docstore.Ref {
	return OfficeRef(officeID).Child(Activities, activityID)
}

func AssigneeRef(officeID, activityID, phone string) docstore.Ref {
	return ActivityRef(officeID, activityID).Child(Assignees, phone)
}

func ProfileRef(phone string) docstore.Ref {
	return docstore.NewRef(Profiles, phone)
}

func SubscriptionRef(phone, id string) docstore.Ref {
	return ProfileRef(phone).Child(Subscriptions, id)
}

func ProfileActivityRef(phone, activityID string) docstore.Ref {
	return ProfileRef(phone).Child(Activities, activityID)
}

func UpdateRef(uid, id string) docstore.Ref {
	return docstore.NewRef(Updates, uid).Child(Addendum, id)
}

func OfficeCollection(officeID, sub string) string {
	return docstore.CollectionPath(Offices, officeID, sub)
}

func UpdatesCollection(uid string) string {
	return docstore.CollectionPath(Updates, uid, Addendum)
}

func attachmentValue(field string) string {
	return fmt.Sprintf("attachment.%s.value", field)
}

// decode converts a snapshot into a T, or nil when the document does not exist.
func decode[T any](snap *docstore.Snapshot) (*T, error) {
	if !snap.Exists() {
		return nil, nil
	}
	out := new(T)
	if err := snap.Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", snap.Ref.Path(), err)
	}
	return out, nil
}

func encode(v any) (docstore.Data, error) {
	return docstore.ToData(v)
}
