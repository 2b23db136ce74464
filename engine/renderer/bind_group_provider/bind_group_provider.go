package bind_group_provider

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBindingMismatch is wrapped by Validate when staged data does not satisfy a layout.
var ErrBindingMismatch = errors.New("bind group does not match layout")

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string
	// group is the bind group index the provider fills.
	group int

	// buffers holds the marshaled contents of uniform and storage bindings, keyed by binding index.
	buffers map[int][]byte
	// samplers holds the sampler configuration of sampler bindings, keyed by binding index.
	samplers map[int]common.SamplerStagingData

	// GPU objects are created by the host from the staged data.

	bindGroup    *wgpu.BindGroup
	textureViews map[int]*wgpu.TextureView
}

// BindGroupProvider stages everything one bind group of a pipeline needs
// before the host creates GPU objects: the marshaled uniform and storage
// buffer contents and the sampler configurations. Texture bindings are render
// targets or baked images owned by the host, which records their views with
// SetTextureView.
//
// Usage pattern:
//  1. Build the provider for a group, e.g. with NewFrameProvider
//  2. Validate it against the pipeline's bind group layout descriptor
//  3. Create buffers and samplers from Buffers and Samplers, upload Writes
//  4. Store the created bind group with SetBindGroup
type BindGroupProvider interface {
	// Label returns the provider's debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Group returns the bind group index the provider fills.
	//
	// Returns:
	//   - int: the group index
	Group() int

	// Buffer returns the staged contents of a buffer binding, or nil if none is staged.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - []byte: the marshaled buffer contents
	Buffer(binding int) []byte

	// Buffers returns every staged buffer keyed by binding index.
	//
	// Returns:
	//   - map[int][]byte: the staged buffers
	Buffers() map[int][]byte

	// Sampler returns the staged configuration of a sampler binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration
	//   - bool: true if a sampler is staged at binding
	Sampler(binding int) (common.SamplerStagingData, bool)

	// Samplers returns every staged sampler keyed by binding index.
	//
	// Returns:
	//   - map[int]common.SamplerStagingData: the staged samplers
	Samplers() map[int]common.SamplerStagingData

	// SetBuffer replaces the staged contents of a buffer binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - data: the marshaled contents
	SetBuffer(binding int, data []byte)

	// SetSampler replaces the staged configuration of a sampler binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler configuration
	SetSampler(binding int, s common.SamplerStagingData)

	// Writes returns one BufferWrite per staged buffer, ordered by binding.
	//
	// Returns:
	//   - []BufferWrite: the uploads that bring the GPU buffers up to date
	Writes() []BufferWrite

	// Validate checks the staged data against a layout: every buffer entry
	// needs at least MinBindingSize staged bytes, every sampler entry a staged
	// sampler whose comparison function matches the entry type, and nothing
	// may be staged at a binding the layout does not declare. Texture entries
	// are host-owned and not checked.
	//
	// Parameters:
	//   - layout: the bind group layout of the provider's group
	//
	// Returns:
	//   - error: an error wrapping ErrBindingMismatch for every problem found, or nil
	Validate(layout wgpu.BindGroupLayoutDescriptor) error

	// BindGroup returns the GPU bind group set by the host, or nil.
	BindGroup() *wgpu.BindGroup

	// SetBindGroup stores the GPU bind group created by the host.
	SetBindGroup(bg *wgpu.BindGroup)

	// TextureView returns the host-owned texture view bound at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView records the host-owned texture view bound at binding.
	SetTextureView(binding int, tv *wgpu.TextureView)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider for a bind group and applies the provided options.
//
// Parameters:
//   - label: a debug label
//   - group: the bind group index the provider fills
//   - options: variadic list of BindGroupProviderOption functions
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, group int, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		group:        group,
		buffers:      make(map[int][]byte),
		samplers:     make(map[int]common.SamplerStagingData),
		textureViews: make(map[int]*wgpu.TextureView),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() int {
	return p.group
}

func (p *bindGroupProvider) Buffer(binding int) []byte {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int][]byte {
	return p.buffers
}

func (p *bindGroupProvider) Sampler(binding int) (common.SamplerStagingData, bool) {
	s, ok := p.samplers[binding]
	return s, ok
}

func (p *bindGroupProvider) Samplers() map[int]common.SamplerStagingData {
	return p.samplers
}

func (p *bindGroupProvider) SetBuffer(binding int, data []byte) {
	p.buffers[binding] = data
}

func (p *bindGroupProvider) SetSampler(binding int, s common.SamplerStagingData) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) Writes() []BufferWrite {
	bindings := make([]int, 0, len(p.buffers))
	for b := range p.buffers {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)

	writes := make([]BufferWrite, 0, len(bindings))
	for _, b := range bindings {
		writes = append(writes, BufferWrite{Provider: p, Binding: b, Data: p.buffers[b]})
	}
	return writes
}

func (p *bindGroupProvider) Validate(layout wgpu.BindGroupLayoutDescriptor) error {
	var errs []error
	declared := make(map[int]bool, len(layout.Entries))
	for _, entry := range layout.Entries {
		binding := int(entry.Binding)
		declared[binding] = true

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			// host-owned
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s, ok := p.samplers[binding]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s binding %d has no sampler", ErrBindingMismatch, p.label, binding))
				continue
			}
			comparison := entry.Sampler.Type == wgpu.SamplerBindingTypeComparison
			if comparison != (s.Compare != wgpu.CompareFunctionUndefined) {
				errs = append(errs, fmt.Errorf("%w: %s binding %d sampler compare %v does not fit a %v binding", ErrBindingMismatch, p.label, binding, s.Compare, entry.Sampler.Type))
			}
		case entry.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			data, ok := p.buffers[binding]
			if !ok || len(data) == 0 {
				errs = append(errs, fmt.Errorf("%w: %s binding %d has no buffer", ErrBindingMismatch, p.label, binding))
				continue
			}
			if uint64(len(data)) < entry.Buffer.MinBindingSize {
				errs = append(errs, fmt.Errorf("%w: %s binding %d has %d bytes, layout needs %d", ErrBindingMismatch, p.label, binding, len(data), entry.Buffer.MinBindingSize))
			}
		}
	}

	for _, staged := range p.stagedBindings() {
		if !declared[staged] {
			errs = append(errs, fmt.Errorf("%w: %s binding %d is not in the layout", ErrBindingMismatch, p.label, staged))
		}
	}
	return errors.Join(errs...)
}

func (p *bindGroupProvider) stagedBindings() []int {
	bindings := make([]int, 0, len(p.buffers)+len(p.samplers))
	for b := range p.buffers {
		bindings = append(bindings, b)
	}
	for b := range p.samplers {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)
	return bindings
}
