package model

// Employee mirrors the `employees` table. It is the sample protected
// resource consumed through the role-gated endpoints; it carries no
// authorization logic of its own.
type Employee struct {
	ID        uint64 `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}
