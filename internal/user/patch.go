package user

import "encoding/json"

// OptionalString distinguishes an omitted JSON field from an explicit null.
// Omission means "leave unchanged"; an explicit null means "clear it".
// UnmarshalJSON only runs when the key is present in the body, which is
// what makes the distinction observable.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true

	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	o.Value = &s
	return nil
}

// UpdateInput is the patch applied by Service.Update. Nil Name means the
// field was not supplied.
type UpdateInput struct {
	Name    *string
	ZipCode OptionalString
}

// CreateInput is the payload for Service.Create.
type CreateInput struct {
	Name    string
	ZipCode *string
}
