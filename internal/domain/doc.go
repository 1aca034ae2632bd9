// Package domain models USGS stream-gauge discharge data and the
// fishing-condition classification derived from it.
//
// # Data Source
//
// Discharge readings originate from USGS Water Services instantaneous-values
// data (parameter code 00060, discharge in cubic feet per second), available
// at https://waterservices.usgs.gov/. The upstream collector service polls
// the gauges on a cron schedule, flattens each observation, and publishes it
// as flat JSON to the Kafka source topic.
//
// # USGS Data Conventions
//
// Discharge ("Discharge" field):
//
//	Cubic feet per second (CFS) as a decimal string: "543" = 543 CFS.
//	"-999999" is the USGS no-data sentinel for a gauge that reported no
//	value; it is normalized to 0 with qualifier "missing".
//	Negative readings occasionally appear during icing or sensor faults
//	and are clamped to 0; every reading must stay classifiable.
//
// Gage height ("GageHeight" field): stage in feet above the local datum.
//
// Qualifier codes: "P" provisional, "A" approved. Passed through untouched
// except when the no-data sentinel forces "missing".
//
// Unknown values: "UNK" and empty strings are treated as zero (unmeasured).
//
// # Condition Zones
//
// Each reading is classified into one of four fishing-condition zones, a
// fixed contiguous partition of [0, ∞) CFS:
//
//	LOW       [0, 350)     too little water, fish concentrated and spooky
//	PRIME     [350, 750)   the productive window
//	CAUTION   [750, 1200)  fishable but pushy, edges only
//	BLOWN_OUT [1200, ∞)    unfishable high water
//
// Boundary values belong to the higher band: 350 CFS is PRIME, not LOW.
// The boundaries are operational thresholds for a freestone river of
// moderate size and are exposed as named constants.
//
// # Gauge Projection
//
// Readings are projected onto a radial gauge for display clients. The
// angular convention is a configured [Sweep], not a hard-coded range: the
// half sweep runs 0°–180°, the wide sweep −135°–+135°. Projection is linear
// and monotonic, and readings above the gauge ceiling peg the needle.
//
// # ID Generation
//
// Reading IDs are deterministic SHA-256 hashes of site|timestamp|cfs. This
// enables idempotent upserts downstream (ON CONFLICT DO NOTHING) and replay
// safety without distributed coordination. See [generateID].
package domain
