package validation

import "strings"

// FieldBase marks a violation that concerns the reservation as a whole
// rather than one input field.
const FieldBase = "base"

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Violations []Violation

func (vs Violations) add(field, message string) Violations {
	return append(vs, Violation{Field: field, Message: message})
}

// Messages renders the violations for transport. Field-scoped messages get
// the field name as a humanized prefix ("recurring_until" reads as
// "Recurring until"); base violations pass through untouched.
func (vs Violations) Messages() []string {
	messages := make([]string, 0, len(vs))
	for _, v := range vs {
		if v.Field == FieldBase || v.Field == "" {
			messages = append(messages, v.Message)
			continue
		}
		messages = append(messages, humanize(v.Field)+" "+v.Message)
	}
	return messages
}

func humanize(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(field[:1]) + field[1:]
}

// Error carries the violations of a rejected request. No state was written
// when a caller receives one.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations.Messages(), "; ")
}
