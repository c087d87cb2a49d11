package registry

// Section holds one registry table and whether it has been loaded. A loaded
// but empty table is distinct from one never fetched.
type Section[T any] struct {
	loaded bool
	value  T
}

func Loaded[T any](value T) Section[T] {
	return Section[T]{loaded: true, value: value}
}

func (s Section[T]) Get() (T, bool) {
	return s.value, s.loaded
}

func (s Section[T]) IsLoaded() bool {
	return s.loaded
}

// Value returns the table, or the zero value when not loaded.
func (s Section[T]) Value() T {
	return s.value
}
