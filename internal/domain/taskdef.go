package domain

type FieldType string

const (
	FieldTypeString  FieldType = "STR"
	FieldTypeInt     FieldType = "INT"
	FieldTypeDouble  FieldType = "DOUBLE"
	FieldTypeBoolean FieldType = "BOOLEAN"
)

// TaskDefField describes one input field of a user-task definition.
type TaskDefField struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
}

// TaskDef is the schema of a user task: the ordered fields a completion
// must fill in. Fetched from the workflow backend, never stored locally.
type TaskDef struct {
	Name   string         `json:"name"`
	Fields []TaskDefField `json:"fields"`
}

// Field returns the named field, or nil when the definition has no such field.
func (d *TaskDef) Field(name string) *TaskDefField {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldValue is one submitted completion value. Exactly one of the typed
// members is meaningful, selected by Type.
type FieldValue struct {
	Type    FieldType `json:"type"`
	Str     string    `json:"str,omitempty"`
	Int     int64     `json:"int,omitempty"`
	Double  float64   `json:"double,omitempty"`
	Boolean bool      `json:"boolean,omitempty"`
}
