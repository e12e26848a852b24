package quantum

import (
	"math"
	"sort"

	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

// Channel is one pre-baked Lindblad jump operator. Drain channels model
// loss to an external sink: their dissipator omits the refill term, so
// trace genuinely leaves the system and is tallied as sink flux.
type Channel struct {
	Op     *qmath.Matrix
	Source string
	Target string
	Rate   float64
	Drain  bool
}

// GatedChannel is a parametric dissipation channel. It is deliberately not
// baked into a matrix: its effective rate is base_rate × P(gate)^power,
// re-evaluated from the live state every integration step.
type GatedChannel struct {
	Source  string
	Target  string
	Gate    string
	Rate    float64
	Power   float64
	Inverse bool
}

// BuildLindblad turns per-label physics records into jump operators for
// population transfer, decay and sink drain, plus the gated-channel
// configurations the engine evaluates fresh each step. Entries referencing
// labels absent from the RegisterMap are skipped.
func BuildLindblad(icons map[string]IconPhysics, rm *RegisterMap) ([]Channel, []GatedChannel) {
	var channels []Channel
	var gated []GatedChannel

	labels := make([]string, 0, len(icons))
	for label := range icons {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	appendTransfer := func(source, target string, rate float64) {
		if rate <= 0 {
			return
		}
		op := BuildJump(rm, source, target, rate)
		if op == nil {
			return
		}
		channels = append(channels, Channel{
			Op:     op,
			Source: source,
			Target: target,
			Rate:   rate,
			Drain:  icons[target].Sink,
		})
	}

	for _, label := range labels {
		icon := icons[label]
		if rm.Qubit(label) < 0 {
			continue
		}

		for _, target := range sortedKeys(icon.LindbladOutgoing) {
			appendTransfer(label, target, icon.LindbladOutgoing[target])
		}
		for _, source := range sortedKeys(icon.LindbladIncoming) {
			appendTransfer(source, label, icon.LindbladIncoming[source])
		}
		if icon.Decay != nil {
			appendTransfer(label, icon.Decay.Target, icon.Decay.Rate)
		}

		for _, rule := range icon.Gated {
			source := rule.Source
			if source == "" {
				source = oppositeLabel(rm, label)
			}
			gated = append(gated, GatedChannel{
				Source:  source,
				Target:  label,
				Gate:    rule.Gate,
				Rate:    rule.Rate,
				Power:   rule.Power,
				Inverse: rule.Inverse,
			})
		}
	}

	return channels, gated
}

// BuildJump constructs the jump operator √rate·|target⟩⟨source| embedded in
// the full space: every basis state with the source label's qubit in its
// pole maps to the partner state with the population moved to the target
// label. Returns nil when either label is unknown or the pair is
// degenerate.
func BuildJump(rm *RegisterMap, source, target string, rate float64) *qmath.Matrix {
	qs, qt := rm.Qubit(source), rm.Qubit(target)
	if qs < 0 || qt < 0 || rate <= 0 {
		return nil
	}
	ps, pt := rm.Pole(source), rm.Pole(target)
	dim := rm.Dim()
	amp := complex(math.Sqrt(rate), 0)
	op := qmath.New(dim)

	if qs == qt {
		if ps == pt {
			return nil
		}
		bit := rm.bit(qs)
		for i := 0; i < dim; i++ {
			if rm.poleAt(i, qs) == ps {
				op.Set(i^bit, i, amp)
			}
		}
		return op
	}

	bitS, bitT := rm.bit(qs), rm.bit(qt)
	for i := 0; i < dim; i++ {
		if rm.poleAt(i, qs) == ps && rm.poleAt(i, qt) != pt {
			op.Set(i^bitS^bitT, i, amp)
		}
	}
	return op
}

// oppositeLabel returns the other pole's label on the same axis.
func oppositeLabel(rm *RegisterMap, label string) string {
	q := rm.Qubit(label)
	ax, ok := rm.AxisAt(q)
	if !ok {
		return ""
	}
	if rm.Pole(label) == 0 {
		return ax.LabelB
	}
	return ax.LabelA
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
