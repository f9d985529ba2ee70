package models

// CheckInStats summarises the guest list of one event for the check-in desk.
type CheckInStats struct {
	EventID    string  `json:"event_id"`
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	Confirmed  int     `json:"confirmed"`
	Declined   int     `json:"declined"`
	CheckedIn  int     `json:"checked_in"`
	Remaining  int     `json:"remaining"`    // confirmed guests not yet checked in
	ArrivalPct float64 `json:"arrival_rate"` // checked_in/(total-declined)
}

// ComputeStats folds a guest list into desk statistics.
func ComputeStats(eventID string, guests []Guest) CheckInStats {
	s := CheckInStats{EventID: eventID, Total: len(guests)}
	for _, g := range guests {
		switch g.RSVPStatus {
		case RSVPConfirmed:
			s.Confirmed++
			if !g.CheckedIn {
				s.Remaining++
			}
		case RSVPDeclined:
			s.Declined++
		default:
			s.Pending++
		}
		if g.CheckedIn {
			s.CheckedIn++
		}
	}
	if expected := s.Total - s.Declined; expected > 0 {
		s.ArrivalPct = float64(s.CheckedIn) / float64(expected)
	}
	return s
}
