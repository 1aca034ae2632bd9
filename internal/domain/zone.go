package domain

import (
	"encoding/json"
	"math"
)

// Zone labels, in ascending flow order.
const (
	ZoneLow      = "LOW"
	ZonePrime    = "PRIME"
	ZoneCaution  = "CAUTION"
	ZoneBlownOut = "BLOWN_OUT"
)

// Zone boundaries in CFS. Each value is the inclusive lower bound of the
// zone it names; 350 CFS is PRIME, not LOW.
const (
	PrimeMinCFS    = 350.0
	CautionMinCFS  = 750.0
	BlownOutMinCFS = 1200.0
)

// Zone is a named, contiguous band of CFS values. MaxCFS is exclusive;
// the last zone is open-ended (MaxCFS = +Inf).
type Zone struct {
	Label  string  `json:"label"`
	MinCFS float64 `json:"min_cfs"`
	MaxCFS float64 `json:"max_cfs"`
	Color  string  `json:"color"`
}

// MarshalJSON emits an open-ended MaxCFS as null, since JSON has no
// representation for +Inf.
func (z Zone) MarshalJSON() ([]byte, error) {
	type wire struct {
		Label  string   `json:"label"`
		MinCFS float64  `json:"min_cfs"`
		MaxCFS *float64 `json:"max_cfs"`
		Color  string   `json:"color"`
	}
	w := wire{Label: z.Label, MinCFS: z.MinCFS, Color: z.Color}
	if !math.IsInf(z.MaxCFS, 1) {
		w.MaxCFS = &z.MaxCFS
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON: a null or absent MaxCFS
// becomes +Inf.
func (z *Zone) UnmarshalJSON(data []byte) error {
	type wire struct {
		Label  string   `json:"label"`
		MinCFS float64  `json:"min_cfs"`
		MaxCFS *float64 `json:"max_cfs"`
		Color  string   `json:"color"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	z.Label = w.Label
	z.MinCFS = w.MinCFS
	z.Color = w.Color
	if w.MaxCFS != nil {
		z.MaxCFS = *w.MaxCFS
	} else {
		z.MaxCFS = math.Inf(1)
	}
	return nil
}

// zoneTable is an ordered, non-overlapping, contiguous partition of [0, ∞).
var zoneTable = []Zone{
	{Label: ZoneLow, MinCFS: 0, MaxCFS: PrimeMinCFS, Color: "#E8B84B"},
	{Label: ZonePrime, MinCFS: PrimeMinCFS, MaxCFS: CautionMinCFS, Color: "#3FA554"},
	{Label: ZoneCaution, MinCFS: CautionMinCFS, MaxCFS: BlownOutMinCFS, Color: "#E87E3B"},
	{Label: ZoneBlownOut, MinCFS: BlownOutMinCFS, MaxCFS: math.Inf(1), Color: "#C44536"},
}

// Zones returns a copy of the zone table in ascending flow order,
// for renderers that draw the full band set.
func Zones() []Zone {
	out := make([]Zone, len(zoneTable))
	copy(out, zoneTable)
	return out
}

// ClassifyFlow maps a discharge reading to its condition zone. It is total
// over all float64 inputs: negative and non-finite values are clamped to 0
// (+Inf classifies as BLOWN_OUT), so it never fails and never panics.
func ClassifyFlow(cfs float64) Zone {
	cfs = clampCFS(cfs)
	for _, z := range zoneTable {
		if cfs >= z.MinCFS && cfs < z.MaxCFS {
			return z
		}
	}
	// Only +Inf falls through the loop (Inf < Inf is false); it belongs to
	// the open-ended last band.
	return zoneTable[len(zoneTable)-1]
}

// clampCFS normalizes a raw discharge value for classification and
// projection: NaN and negatives become 0, +Inf is preserved.
func clampCFS(cfs float64) float64 {
	if math.IsNaN(cfs) || cfs < 0 {
		return 0
	}
	return cfs
}
