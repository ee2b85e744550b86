package warehouse

// Component names one component type's Ordinal within a World's
// Registry, without repeating the Go type parameter at every call
// site. It is produced by ComponentOf and consumed by Query builders.
type Component struct {
	ordinal Ordinal
}

// ComponentOf resolves T's Ordinal in w's registry, registering T on
// first use if the registry is a DynamicRegistry.
func ComponentOf[T any](w *World) (Component, error) {
	ord, err := ordinalFor[T](w)
	if err != nil {
		return Component{}, err
	}
	return Component{ordinal: ord}, nil
}
