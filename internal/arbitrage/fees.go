package arbitrage

// FeeSchedule resolves the taker fee, in percent, charged by a venue.
type FeeSchedule struct {
	DefaultTakerPercent float64
	PerVenue            map[string]float64
}

// TakerPercent returns the venue override if present, else the default.
func (f FeeSchedule) TakerPercent(venueID string) float64 {
	if fee, ok := f.PerVenue[venueID]; ok {
		return fee
	}
	return f.DefaultTakerPercent
}
