// Package quantum implements the open-quantum-system engine: register
// coordinate mapping, Hamiltonian and Lindblad operator builders, and the
// density-matrix evolution/measurement core.
package quantum

import "fmt"

// Coordinate locates a label inside the Hilbert space: which qubit axis it
// lives on and which of the two poles it names.
type Coordinate struct {
	Qubit int
	Pole  int
}

// Axis is one two-level register: pole 0 carries LabelA, pole 1 LabelB.
type Axis struct {
	LabelA string
	LabelB string
}

// RegisterMap is the bijection between symbolic register labels and
// (qubit, pole) coordinates. Qubit 0 occupies the most-significant bit of a
// computational basis index; every operator-embedding routine in this
// package relies on that ordering.
type RegisterMap struct {
	axes   []Axis
	coords map[string]Coordinate
}

// NewRegisterMap returns an empty map; axes are registered one at a time.
func NewRegisterMap() *RegisterMap {
	return &RegisterMap{coords: make(map[string]Coordinate)}
}

// RegisterAxis binds a new qubit axis to a label pair. The index must be
// the next contiguous qubit number, the labels must differ, and neither
// label may already be bound to another axis.
func (rm *RegisterMap) RegisterAxis(index int, labelA, labelB string) error {
	if labelA == labelB {
		return fmt.Errorf("axis %d: degenerate labels %q", index, labelA)
	}
	if index != len(rm.axes) {
		return fmt.Errorf("axis index %d not contiguous (next is %d)", index, len(rm.axes))
	}
	for _, label := range []string{labelA, labelB} {
		if c, ok := rm.coords[label]; ok && c.Qubit != index {
			return fmt.Errorf("label %q already bound to qubit %d", label, c.Qubit)
		}
	}
	rm.axes = append(rm.axes, Axis{LabelA: labelA, LabelB: labelB})
	rm.coords[labelA] = Coordinate{Qubit: index, Pole: 0}
	rm.coords[labelB] = Coordinate{Qubit: index, Pole: 1}
	return nil
}

// NumQubits returns the number of registered axes.
func (rm *RegisterMap) NumQubits() int { return len(rm.axes) }

// Dim returns the Hilbert-space dimension 2^NumQubits.
func (rm *RegisterMap) Dim() int { return 1 << len(rm.axes) }

// Qubit returns the qubit index owning the label, or -1 for unknown labels
// so callers can treat "unregistered" as "zero population" uniformly.
func (rm *RegisterMap) Qubit(label string) int {
	if c, ok := rm.coords[label]; ok {
		return c.Qubit
	}
	return -1
}

// Pole returns the pole the label names on its axis, or -1 when unknown.
func (rm *RegisterMap) Pole(label string) int {
	if c, ok := rm.coords[label]; ok {
		return c.Pole
	}
	return -1
}

// AxisAt returns the axis for a qubit index.
func (rm *RegisterMap) AxisAt(qubit int) (Axis, bool) {
	if qubit < 0 || qubit >= len(rm.axes) {
		return Axis{}, false
	}
	return rm.axes[qubit], true
}

// Labels returns every registered label in axis order, pole 0 before pole 1.
func (rm *RegisterMap) Labels() []string {
	out := make([]string, 0, 2*len(rm.axes))
	for _, ax := range rm.axes {
		out = append(out, ax.LabelA, ax.LabelB)
	}
	return out
}

// bit returns the basis-index bit mask for a qubit. Qubit 0 is the MSB.
func (rm *RegisterMap) bit(qubit int) int {
	return 1 << (len(rm.axes) - 1 - qubit)
}

// poleAt extracts the pole of a qubit from a basis index.
func (rm *RegisterMap) poleAt(basis, qubit int) int {
	if basis&rm.bit(qubit) != 0 {
		return 1
	}
	return 0
}

// BasisToLabels converts a computational basis index into the per-qubit
// label tuple. Out-of-range indices return nil.
func (rm *RegisterMap) BasisToLabels(basis int) []string {
	if basis < 0 || basis >= rm.Dim() {
		return nil
	}
	out := make([]string, len(rm.axes))
	for q, ax := range rm.axes {
		if rm.poleAt(basis, q) == 0 {
			out[q] = ax.LabelA
		} else {
			out[q] = ax.LabelB
		}
	}
	return out
}

// LabelsToBasis converts a per-qubit label tuple into a basis index, or -1
// when any label is unknown, a qubit is named twice, or a qubit is missing.
func (rm *RegisterMap) LabelsToBasis(labels []string) int {
	if len(labels) != len(rm.axes) {
		return -1
	}
	seen := make(map[int]bool, len(labels))
	basis := 0
	for _, label := range labels {
		c, ok := rm.coords[label]
		if !ok || seen[c.Qubit] {
			return -1
		}
		seen[c.Qubit] = true
		if c.Pole == 1 {
			basis |= rm.bit(c.Qubit)
		}
	}
	return basis
}
