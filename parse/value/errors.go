package value

import "fmt"

// VariableNotFoundError reports a template reference whose dotted path has
// no entry in the variable bag.
type VariableNotFoundError struct {
	Path string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("Variable %s not found in variables", e.Path)
}
