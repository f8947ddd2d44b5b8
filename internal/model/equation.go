package model

// Equation describes how a metric is computed: an algebraic formula over
// canonical variable names, the variables it requires, its unit, and an
// optional simpler fallback formula for when primary inputs are missing.
type Equation struct {
	Formula  string    `json:"formula"`
	Required []string  `json:"required"`
	Unit     string    `json:"unit,omitempty"`
	Fallback *Fallback `json:"fallback,omitempty"`
}

// Fallback is an alternative formula with its own required variables.
type Fallback struct {
	Formula  string   `json:"formula"`
	Required []string `json:"required"`
}

// IsZero reports whether the equation carries no usable formula. The resolver
// caches zero equations too, so a metric that resolved to nothing is not
// re-queried.
func (e Equation) IsZero() bool {
	return e.Formula == ""
}
