package report

// PreviousDay is the per-position baseline for a report date: the ending
// stock counted on yesterday's submitted report plus everything that arrived
// today. Recomputed on every report load, never cached.
type PreviousDay struct {
	EndingStock float64 `json:"ending_stock"`
	Arrivals    float64 `json:"arrivals"`
}

// CalculateWriteOff returns the consumed/lost quantity for a position:
// previous ending stock + today's arrivals - counted ending stock, floored
// at zero. Without a baseline there is no computable consumption, so 0.
// An ending count above what could possibly be on hand is clamped to zero
// consumption rather than reported as an error.
func CalculateWriteOff(prev *PreviousDay, endingStock float64) float64 {
	if prev == nil {
		return 0
	}
	writeOff := prev.EndingStock + prev.Arrivals - endingStock
	if writeOff < 0 {
		return 0
	}
	return writeOff
}
