package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBufferSize declares the byte size of the buffer the backend creates for a binding.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that records the buffer size for the binding
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithIndexCount sets the number of indices drawn from this provider's index buffer.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
