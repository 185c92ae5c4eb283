// Package mapper converts between the object type exposed to callers and the
// entity type held by repositories.
package mapper

// Mapper is a pure, total conversion from A to B.
type Mapper[A, B any] interface {
	Map(A) B
}

// Func adapts a plain function to Mapper.
type Func[A, B any] func(A) B

func (fn Func[A, B]) Map(a A) B {
	return fn(a)
}

// MapAll applies m to every element. A nil input maps to a nil output.
func MapAll[A, B any](m Mapper[A, B], in []A) []B {
	if in == nil {
		return nil
	}
	out := make([]B, len(in))
	for i, a := range in {
		out[i] = m.Map(a)
	}
	return out
}
