// Package timing implements the pre-image execution-time cost model
// (spec §4.13). It is deliberately minimal: every command and every
// dynamic-data round trip costs a flat unit, since this pipeline never
// runs a real interpreter to measure anything finer.
package timing

// SizeHints is the pre-image execution-time estimator's view of a
// register's known or guessed length, keyed by nothing more than
// position since callers already know which register a hint is for.
type SizeHints struct {
	Length int
	Known  bool
}

// Coefficient is the constant per-command cost every Instruction.Cost is
// stamped with when no finer model applies.
const Coefficient = 1.0

// Estimate returns the flat per-instruction cost regardless of hints,
// serving as the baseline AddTimed callers use until a real cost model
// is worth building.
func Estimate(_ SizeHints) float64 {
	return Coefficient
}

// GenerateDynamicData and UseDynamicData round-trip a trivial constant
// payload, letting registry.DynamicDataProvider implementations exist
// without committing to a real timing-data format (spec §4.13 scopes
// dynamic data as present but not load-bearing for this pipeline).
func GenerateDynamicData() ([]byte, error) {
	return []byte{byte(Coefficient)}, nil
}

func UseDynamicData(_ []byte) error {
	return nil
}
