package bind_group_provider

import "github.com/Carmen-Shannon/oxy-pbr/common"

// BindGroupProviderOption is a function that configures a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer stages the contents of a uniform or storage binding.
//
// Parameters:
//   - binding: the binding index
//   - data: the marshaled buffer contents
//
// Returns:
//   - BindGroupProviderOption: a function that stages the buffer
func WithBuffer(binding int, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = data
	}
}

// WithSampler stages the configuration of a sampler binding.
//
// Parameters:
//   - binding: the binding index
//   - s: the sampler configuration
//
// Returns:
//   - BindGroupProviderOption: a function that stages the sampler
func WithSampler(binding int, s common.SamplerStagingData) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}
