// Package postconfig stores the post configuration: one record holding the
// message, image, reaction, schedule hints and the published flag.
package postconfig

import "fmt"

// Field names one column of the configuration record.
type Field int

const (
	FieldMessage Field = iota + 1
	FieldImagePath
	FieldReaction
	FieldStartDate
	FieldFrequency
	FieldPublished
)

// Fields lists every field in display order.
var Fields = []Field{
	FieldMessage,
	FieldImagePath,
	FieldReaction,
	FieldStartDate,
	FieldFrequency,
	FieldPublished,
}

// String returns the canonical field name, which is also its column name.
func (f Field) String() string {
	col, err := f.Column()
	if err != nil {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return col
}

// Column returns the column backing f.
func (f Field) Column() (string, error) {
	switch f {
	case FieldMessage:
		return "message", nil
	case FieldImagePath:
		return "image_path", nil
	case FieldReaction:
		return "reaction", nil
	case FieldStartDate:
		return "start_date", nil
	case FieldFrequency:
		return "frequency", nil
	case FieldPublished:
		return "published", nil
	}
	return "", &InvalidFieldError{Field: f}
}

// IsText reports whether f holds free text. Only FieldPublished is boolean.
func (f Field) IsText() bool {
	return f != FieldPublished
}

// ParseField maps a canonical name back to its Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, &InvalidFieldError{Name: name}
}

// Value is a stored field value. The zero Value means unset.
type Value struct {
	Valid  bool
	text   string
	flag   bool
	isBool bool
}

// Text wraps s as a text value. s is stored verbatim.
func Text(s string) Value { return Value{Valid: true, text: s} }

// Bool wraps b as a boolean value.
func Bool(b bool) Value { return Value{Valid: true, flag: b, isBool: true} }

// Unset returns the unset marker.
func Unset() Value { return Value{} }

// String returns the text payload, or "" for unset and boolean values.
func (v Value) String() string { return v.text }

// Bool returns the boolean payload; false for unset and text values.
func (v Value) Bool() bool { return v.flag }

// IsBool reports whether v carries a boolean.
func (v Value) IsBool() bool { return v.isBool }

// Record is a snapshot of the whole configuration.
type Record struct {
	Message   Value
	ImagePath Value
	Reaction  Value
	StartDate Value
	Frequency Value
	Published bool
}

// Get returns the value of f within the snapshot.
func (r Record) Get(f Field) (Value, error) {
	switch f {
	case FieldMessage:
		return r.Message, nil
	case FieldImagePath:
		return r.ImagePath, nil
	case FieldReaction:
		return r.Reaction, nil
	case FieldStartDate:
		return r.StartDate, nil
	case FieldFrequency:
		return r.Frequency, nil
	case FieldPublished:
		return Bool(r.Published), nil
	}
	return Value{}, &InvalidFieldError{Field: f}
}
