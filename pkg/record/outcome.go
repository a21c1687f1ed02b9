package record

// Outcome is the result of running a record's validations.
type Outcome struct {
	// Valid is true when no validation added an error.
	Valid bool `json:"valid"`

	// Errors maps field names to their error messages.
	Errors map[string][]string `json:"errors,omitempty"`
}

// NewOutcome returns a valid Outcome with no errors.
func NewOutcome() *Outcome {
	return &Outcome{
		Valid:  true,
		Errors: make(map[string][]string),
	}
}

// Add records an error message on a field and marks the outcome
// invalid.
func (o *Outcome) Add(field, message string) {
	if o.Errors == nil {
		o.Errors = make(map[string][]string)
	}
	o.Errors[field] = append(o.Errors[field], message)
	o.Valid = false
}

// ErrorsFor returns the error messages recorded on a field.
func (o *Outcome) ErrorsFor(field string) []string {
	if o == nil || o.Errors == nil {
		return nil
	}
	return o.Errors[field]
}
