package store

import "iter"

// Iterable is implemented by key-unique containers that expose their
// contents as a finite, restartable traversal. Calling Entries again yields
// a fresh traversal reflecting the container's current contents.
type Iterable[K comparable, V any] interface {
	Len() int
	Entries() iter.Seq2[K, V]
}

// Keys projects the key side of the traversal.
func Keys[K comparable, V any](it Iterable[K, V]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range it.Entries() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values projects the value side of the traversal.
func Values[K comparable, V any](it Iterable[K, V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range it.Entries() {
			if !yield(v) {
				return
			}
		}
	}
}

// Every reports whether pred holds for all entries. It short-circuits on the
// first false and is vacuously true for an empty container.
func Every[K comparable, V any](it Iterable[K, V], pred func(K, V) bool) bool {
	for k, v := range it.Entries() {
		if !pred(k, v) {
			return false
		}
	}
	return true
}

// Some reports whether pred holds for at least one entry. It short-circuits
// on the first true and is false for an empty container.
func Some[K comparable, V any](it Iterable[K, V], pred func(K, V) bool) bool {
	for k, v := range it.Entries() {
		if pred(k, v) {
			return true
		}
	}
	return false
}

// Find returns the first value in iteration order satisfying pred.
func Find[K comparable, V any](it Iterable[K, V], pred func(V) bool) (V, bool) {
	for _, v := range it.Entries() {
		if pred(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Filter returns the values satisfying pred, preserving iteration order.
func Filter[K comparable, V any](it Iterable[K, V], pred func(V) bool) []V {
	out := []V{}
	for _, v := range it.Entries() {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// Map returns one transformed value per entry, in iteration order.
func Map[K comparable, V, R any](it Iterable[K, V], transform func(V) R) []R {
	out := make([]R, 0, it.Len())
	for _, v := range it.Entries() {
		out = append(out, transform(v))
	}
	return out
}

// Reduce left-folds combine over the values in iteration order, starting
// from initial.
func Reduce[K comparable, V, A any](it Iterable[K, V], combine func(A, V) A, initial A) A {
	acc := initial
	for _, v := range it.Entries() {
		acc = combine(acc, v)
	}
	return acc
}

// First returns the value of the first entry in iteration order.
func First[K comparable, V any](it Iterable[K, V]) (V, bool) {
	for _, v := range it.Entries() {
		return v, true
	}
	var zero V
	return zero, false
}

// ToSlice materializes the values into an ordered slice.
func ToSlice[K comparable, V any](it Iterable[K, V]) []V {
	out := make([]V, 0, it.Len())
	for _, v := range it.Entries() {
		out = append(out, v)
	}
	return out
}

// ForEach applies visit to each (value, key) pair for side effects.
func ForEach[K comparable, V any](it Iterable[K, V], visit func(V, K)) {
	for k, v := range it.Entries() {
		visit(v, k)
	}
}
