package modeladapters

// BackendKind identifies the runtime family an ASR backend belongs to.
type BackendKind string

const (
	BackendLocalCTranslate   BackendKind = "local-ctranslate"
	BackendLocalTransformers BackendKind = "local-transformers"
	BackendLocalNeMo         BackendKind = "local-nemo"
	BackendRemoteAPI         BackendKind = "remote-api"
)

// Capability names an optional feature an ASR backend may support.
type Capability string

const (
	CapabilityConfidence Capability = "confidence"
	CapabilityTimestamps Capability = "timestamps"
	CapabilityStreaming  Capability = "streaming"
)

// ResourceRequirements describes the approximate hardware a model needs.
type ResourceRequirements struct {
	// MinVRAMGB is the approximate GPU memory needed to load the model.
	// Zero means no GPU requirement.
	MinVRAMGB int `json:"min_vram_gb,omitempty"`
	// CPUOnly marks models that run without any accelerator.
	CPUOnly bool `json:"cpu_only,omitempty"`
}

// ModelDescriptor is the static metadata for one ASR backend.
type ModelDescriptor struct {
	Name         string               `json:"name"`
	BackendKind  BackendKind          `json:"backend_kind"`
	Capabilities []Capability         `json:"capabilities,omitempty"`
	Resources    ResourceRequirements `json:"resource_requirements"`
	// Fallback names the next model to try when this one is unavailable.
	// Empty for chain terminals. Chains must be acyclic; the resolver
	// rejects registries that violate this.
	Fallback string `json:"fallback,omitempty"`
}

// HasCapability reports whether the descriptor lists the given capability.
func (d ModelDescriptor) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
