package xiter

// Zipped holds a pair of values and their presence flags.
type Zipped[T, U any] struct {
	V1  T
	OK1 bool
	V2  U
	OK2 bool
}

// Indexed is a value with its zero-based position in the lap that produced it.
type Indexed[T any] struct {
	Index int
	Value T
}
