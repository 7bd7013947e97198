package validator

// Validator validates structs using `validate` struct tags.
type Validator interface {
	// Validate returns nil when data is valid, otherwise an error describing
	// the violated fields.
	Validate(data any) error
}
