// Package validation decides whether locally stored entities can be served
// without consulting the authoritative store.
package validation

// ObjectValidation reports whether a single entity is usable.
type ObjectValidation[E any] interface {
	IsValid(E) bool
}

// Func adapts a plain predicate to ObjectValidation.
type Func[E any] func(E) bool

func (fn Func[E]) IsValid(e E) bool {
	return fn(e)
}

// Always accepts every entity.
type Always[E any] struct{}

func (Always[E]) IsValid(E) bool { return true }

// IsArrayValid applies v to a collection: a nil collection is valid (there is
// nothing cached to invalidate), an empty one is not, otherwise every element must be valid.
func IsArrayValid[E any](v ObjectValidation[E], items []E) bool {
	if items == nil {
		return true
	}
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !v.IsValid(item) {
			return false
		}
	}
	return true
}
