// SPDX-License-Identifier: MIT
package module

// ParamDescriptor is the read-only view of one parameter for panel layout.
type ParamDescriptor struct {
	Label   string  `json:"label"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Descriptor is everything a panel needs to lay out the module. It carries
// no behaviour back into the module.
type Descriptor struct {
	Inputs  int               `json:"inputs"`
	Outputs int               `json:"outputs"`
	Params  []ParamDescriptor `json:"params"`
}

// Descriptor builds the layout view from the metadata fixed at construction.
func (m *Module) Descriptor() Descriptor {
	d := Descriptor{
		Inputs:  len(m.inputs),
		Outputs: len(m.outputs),
		Params:  make([]ParamDescriptor, len(m.params)),
	}
	for i := range m.params {
		p := &m.params[i]
		d.Params[i] = ParamDescriptor{
			Label:   p.Label,
			Name:    p.Name,
			Unit:    p.Unit,
			Min:     p.Min,
			Max:     p.Max,
			Default: p.Default,
		}
	}
	return d
}

// ParamLabels returns the truncated parameter labels in index order.
func (d Descriptor) ParamLabels() []string {
	labels := make([]string, len(d.Params))
	for i, p := range d.Params {
		labels[i] = p.Label
	}
	return labels
}
