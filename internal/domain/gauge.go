package domain

import "math"

// DefaultMaxGaugeCFS is the display ceiling of the radial gauge. Readings
// above it peg the needle rather than error.
const DefaultMaxGaugeCFS = 2000.0

// Sweep is the angular convention of a radial gauge. Two conventions are in
// use by display clients, so the sweep is configuration rather than a
// constant: HalfSweep for semicircular gauges, WideSweep for 270° dials.
type Sweep struct {
	StartDeg float64 `json:"start_deg"`
	EndDeg   float64 `json:"end_deg"`
}

var (
	// HalfSweep maps 0 CFS → 0° and the ceiling → 180°.
	HalfSweep = Sweep{StartDeg: 0, EndDeg: 180}

	// WideSweep maps 0 CFS → −135° and the ceiling → +135°.
	WideSweep = Sweep{StartDeg: -135, EndDeg: 135}
)

// GaugeProjection is the angular position of a reading on a radial gauge.
type GaugeProjection struct {
	AngleDeg   float64 `json:"angle_deg"`
	ClampedCFS float64 `json:"clamped_cfs"`
	Ratio      float64 `json:"ratio"` // ClampedCFS / ceiling, in [0, 1]
}

// ZoneArc is the angular band a zone occupies on the gauge face, letting
// renderers draw colored segments independent of the live reading.
type ZoneArc struct {
	Zone     Zone    `json:"zone"`
	StartDeg float64 `json:"start_deg"`
	EndDeg   float64 `json:"end_deg"`
}

// Project maps a discharge reading onto the gauge: clamp to [0, maxCfs],
// then map the ratio linearly onto the sweep. Monotonic in cfs for a fixed
// ceiling; cfs above the ceiling projects the same as the ceiling itself.
// A non-positive or non-finite maxCfs falls back to DefaultMaxGaugeCFS.
func Project(cfs, maxCfs float64, sweep Sweep) GaugeProjection {
	if maxCfs <= 0 || math.IsNaN(maxCfs) || math.IsInf(maxCfs, 0) {
		maxCfs = DefaultMaxGaugeCFS
	}

	clamped := clampCFS(cfs)
	if clamped > maxCfs {
		clamped = maxCfs
	}

	ratio := clamped / maxCfs
	return GaugeProjection{
		AngleDeg:   sweep.StartDeg + ratio*(sweep.EndDeg-sweep.StartDeg),
		ClampedCFS: clamped,
		Ratio:      ratio,
	}
}

// ZoneArcs projects each zone's bounds onto the gauge. Bounds are clamped
// to the ceiling, so zones entirely above it collapse to zero-width arcs at
// the sweep end.
func ZoneArcs(maxCfs float64, sweep Sweep) []ZoneArc {
	arcs := make([]ZoneArc, 0, len(zoneTable))
	for _, z := range zoneTable {
		arcs = append(arcs, ZoneArc{
			Zone:     z,
			StartDeg: Project(z.MinCFS, maxCfs, sweep).AngleDeg,
			EndDeg:   Project(z.MaxCFS, maxCfs, sweep).AngleDeg,
		})
	}
	return arcs
}
