package dashboard

// State is a point-in-time copy of the view-model. Mutating a State never
// affects the Service it came from.
type State struct {
	View          View
	Modal         Modal
	Cards         []ChartCard
	Charts        map[ChartSlot]ChartDataset
	ChartsLoading bool
	Reports       []Report
	Toast         Toast
}

// Dataset returns the dataset for slot (empty when not loaded).
func (s State) Dataset(slot ChartSlot) ChartDataset {
	return s.Charts[slot]
}

// Stats summarizes the loaded data for the stat cards.
type Stats struct {
	TotalParticipation float64
	Departments        int
	Categories         int
	SavedReports       int
}

// Stats derives the summary figures shown above the charts.
func (s State) Stats() Stats {
	return Stats{
		TotalParticipation: s.Dataset(SlotParticipationStatus).Total(),
		Departments:        len(s.Dataset(SlotDepartmentReach).Points),
		Categories:         len(s.Dataset(SlotCategoryParticipation).Points),
		SavedReports:       len(s.Reports),
	}
}

// FindReport returns the report with id from the current list.
func (s State) FindReport(id int64) (Report, bool) {
	for _, r := range s.Reports {
		if r.HasID() && *r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}
