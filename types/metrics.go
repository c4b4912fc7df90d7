package types

// GridEmissionFactor converts estimated energy (kWh) to emissions (gCO2).
// Fixed heuristic constant, not a measured grid intensity.
const GridEmissionFactor = 500.0

// ResourceMetrics is the shared metric model for both static estimates
// and runtime accumulation. Emissions always equals Energy * GridEmissionFactor.
type ResourceMetrics struct {
	Energy            float64 `json:"energy_kwh"`
	Emissions         float64 `json:"emissions_gco2"`
	Memory            float64 `json:"memory_mb"`
	NetworkCalls      int     `json:"network_calls"`
	IOOperations      int     `json:"io_operations"`
	ComputeComplexity float64 `json:"compute_complexity"`
}

// NewResourceMetrics returns zero-valued metrics with unit complexity.
func NewResourceMetrics() ResourceMetrics {
	return ResourceMetrics{ComputeComplexity: 1}
}

// SetEnergy sets energy and keeps the emissions invariant.
func (m *ResourceMetrics) SetEnergy(kwh float64) {
	m.Energy = kwh
	m.Emissions = kwh * GridEmissionFactor
}

// AddEnergy adds energy and keeps the emissions invariant.
func (m *ResourceMetrics) AddEnergy(kwh float64) {
	m.SetEnergy(m.Energy + kwh)
}

// Merge folds a partial update into the accumulator. Additive fields sum,
// memory takes the running peak, complexity takes the running maximum.
// Emissions is recomputed from the merged energy so the invariant holds
// even when the partial carries energy without emissions.
func (m *ResourceMetrics) Merge(partial ResourceMetrics) {
	m.Energy += partial.Energy
	m.NetworkCalls += partial.NetworkCalls
	m.IOOperations += partial.IOOperations
	if partial.Memory > m.Memory {
		m.Memory = partial.Memory
	}
	if partial.ComputeComplexity > m.ComputeComplexity {
		m.ComputeComplexity = partial.ComputeComplexity
	}
	if m.ComputeComplexity < 1 {
		m.ComputeComplexity = 1
	}
	m.Emissions = m.Energy * GridEmissionFactor
}
