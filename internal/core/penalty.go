package core

// Unrecorded penalty tiers. An amount above the last ceiling is charged in
// full.
var unrecordedTiers = []PenaltyTier{
	{Ceiling: 50, Penalty: 0},
	{Ceiling: 100, Penalty: 50},
	{Ceiling: 150, Penalty: 75},
	{Ceiling: 200, Penalty: 100},
}

// ShortSurcharge is added on top of any non-zero short amount.
const ShortSurcharge = 50

// PenaltyTier charges Penalty for amounts up to and including Ceiling.
type PenaltyTier struct {
	Ceiling float64 `json:"ceiling"`
	Penalty float64 `json:"penalty"`
}

// DailySplit is the derived penalty breakdown for one day.
type DailySplit struct {
	UnrecordedPenalty float64 `json:"unrecorded_penalty"`
	ShortPenalty      float64 `json:"short_penalty"`
	TotalPenalty      float64 `json:"total_penalty"`
	PerPersonShare    float64 `json:"per_person_share"`
}

// UnrecordedTiers returns a copy of the unrecorded tier table.
func UnrecordedTiers() []PenaltyTier {
	return append([]PenaltyTier(nil), unrecordedTiers...)
}

// ComputeUnrecordedPenalty maps an unrecorded amount to its tiered penalty.
func ComputeUnrecordedPenalty(amount float64) float64 {
	v := NormalizeAmount(amount)
	if v == 0 {
		return 0
	}
	for _, t := range unrecordedTiers {
		if v <= t.Ceiling {
			return t.Penalty
		}
	}
	return v
}

// ComputeShortPenalty charges the short amount plus the fixed surcharge.
func ComputeShortPenalty(amount float64) float64 {
	v := NormalizeAmount(amount)
	if v <= 0 {
		return 0
	}
	return v + ShortSurcharge
}

// SplitDailyPenalty sums both penalties and divides the total evenly among
// attendees. Zero attendees or a zero total yields a zero share.
func SplitDailyPenalty(unrecordedAmount, shortAmount float64, attendeeCount int) DailySplit {
	s := DailySplit{
		UnrecordedPenalty: ComputeUnrecordedPenalty(unrecordedAmount),
		ShortPenalty:      ComputeShortPenalty(shortAmount),
	}
	s.TotalPenalty = s.UnrecordedPenalty + s.ShortPenalty
	if attendeeCount > 0 && s.TotalPenalty > 0 {
		s.PerPersonShare = s.TotalPenalty / float64(attendeeCount)
	}
	return s
}
