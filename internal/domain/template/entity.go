package template

import "sort"

// CanEditRule decides which assignees of an activity may edit it.
type CanEditRule string

const (
	CanEditAll         CanEditRule = "ALL"
	CanEditNone        CanEditRule = "NONE"
	CanEditCreator     CanEditRule = "CREATOR"
	CanEditFromInclude CanEditRule = "FROM_INCLUDE"
	CanEditPeopleType  CanEditRule = "PEOPLE_TYPE"
	CanEditAdmin       CanEditRule = "ADMIN"
	CanEditEmployee    CanEditRule = "EMPLOYEE"
)

var CanEditRules = []CanEditRule{
	CanEditAll, CanEditNone, CanEditCreator, CanEditFromInclude, CanEditPeopleType, CanEditAdmin, CanEditEmployee,
}

func (r CanEditRule) Valid() bool {
	for _, rule := range CanEditRules {
		if r == rule {
			return true
		}
	}
	return false
}

// Status of an activity or subscription.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusPending   Status = "PENDING"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusPending || s == StatusCancelled
}

// Names of templates with behaviour attached to them.
const (
	NameOffice       = "office"
	NameSubscription = "subscription"
	NameAdmin        = "admin"
	NameEmployee     = "employee"
	NameBranch       = "branch"
	NameCheckIn      = "check-in"
	NameLeave        = "leave"
	NameLeaveType    = "leave-type"
	NameTourPlan     = "tour plan"
	NamePlan         = "plan"
)

// Field is one attachment entry: its declared type and its value.
type Field struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Attachment maps field names to typed values.
type Attachment map[string]Field

// String returns the value of name as a string, or "".
func (a Attachment) String(name string) string {
	s, _ := a[name].Value.(string)
	return s
}

// Values flattens the attachment into name -> value.
func (a Attachment) Values() map[string]any {
	out := make(map[string]any, len(a))
	for name, f := range a {
		out[name] = f.Value
	}
	return out
}

// Template is the schema and defaults for a class of activity.
type Template struct {
	ID             string      `json:"-"`
	Name           string      `json:"name"`
	DefaultTitle   string      `json:"defaultTitle"`
	Comment        string      `json:"comment"`
	Schedule       []string    `json:"schedule"`
	Venue          []string    `json:"venue"`
	Attachment     Attachment  `json:"attachment"`
	CanEditRule    CanEditRule `json:"canEditRule"`
	StatusOnCreate Status      `json:"statusOnCreate"`
	Hidden         int         `json:"hidden"`
	Timestamp      int64       `json:"timestamp"`
}

// Descriptors returns the typed field list of the template attachment, ordered by name.
func (t *Template) Descriptors() []FieldDescriptor {
	return DescriptorsOf(t.Attachment)
}

// DescriptorsOf builds field descriptors from an attachment definition.
func DescriptorsOf(a Attachment) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(a))
	for name, f := range a {
		out = append(out, FieldDescriptor{Name: name, Type: ParseValueType(f.Type)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
