//go:build !protogen

package schedule

// NewProvider is a no-op unless built with the protogen tag after running
// the proto codegen. Callers fall back to the shared-schema availability
// store when it returns nil.
func NewProvider(_ string) (Provider, error) {
	return nil, nil
}
