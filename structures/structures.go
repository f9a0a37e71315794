package structures

// Structure represents a packstream tagged structure: a numeric signature
// plus an ordered list of fields. Both request messages and hydrated graph
// entities implement it.
type Structure interface {
	Signature() int
	AllFields() []interface{}
}
