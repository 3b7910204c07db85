package template

// Kind is the primitive shape of an attachment value.
type Kind string

const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindEmail       Kind = "email"
	KindPhoneNumber Kind = "phoneNumber"
	KindHHMM        Kind = "HH:MM"
	KindWeekday     Kind = "weekday"
	KindBoolean     Kind = "boolean"
	KindBase64      Kind = "base64"
	// KindReference values name an activity of another template in the same office.
	KindReference Kind = "reference"
)

var primitiveKinds = map[string]Kind{
	string(KindString):      KindString,
	string(KindNumber):      KindNumber,
	string(KindEmail):       KindEmail,
	string(KindPhoneNumber): KindPhoneNumber,
	string(KindHHMM):        KindHHMM,
	string(KindWeekday):     KindWeekday,
	string(KindBoolean):     KindBoolean,
	string(KindBase64):      KindBase64,
}

// ValueType is either a primitive kind or a reference to the template named Reference.
type ValueType struct {
	Kind      Kind
	Reference string
}

func ParseValueType(t string) ValueType {
	if k, ok := primitiveKinds[t]; ok {
		return ValueType{Kind: k}
	}
	return ValueType{Kind: KindReference, Reference: t}
}

// String is the declared type name as stored in attachments.
func (v ValueType) String() string {
	if v.Kind == KindReference {
		return v.Reference
	}
	return string(v.Kind)
}

// FieldDescriptor is one declared attachment field.
type FieldDescriptor struct {
	Name string
	Type ValueType
}

