package dao

// Parameter narrows a List call, i.e. filtering tasks by status.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list parameter.
func NewParameter(name string, value interface{}) *Parameter {
	return &Parameter{Name: name, Value: value}
}
