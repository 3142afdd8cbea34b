package loader

import "fmt"

// Required marks a key that some later source must define.
type Required struct {
	Key     string
	Comment string
}

func (r *Required) String() string {
	if r.Comment == "" {
		return fmt.Sprintf("Undefined required key <%s>", r.Key)
	}
	return fmt.Sprintf("Undefined required key <%s>: %s", r.Key, r.Comment)
}

func (r *Required) Error() string {
	return r.String()
}
