package dashboard

// Modal is the single dialog currently open. The zero value (nil) means no
// dialog; the concrete types below are the only implementations, so two
// dialogs can never be open at once.
type Modal interface {
	modalKind() string
}

// ChartModal shows an enlarged chart. It carries its own copy of the data.
type ChartModal struct {
	Card    ChartCard
	Dataset ChartDataset
}

func (ChartModal) modalKind() string { return "chart" }

// ReportFormModal edits a draft report. Editing is nil for a new report.
type ReportFormModal struct {
	Editing *Report
	Draft   ReportInput
}

func (ReportFormModal) modalKind() string { return "report_form" }

// IsEdit reports whether the form updates an existing report.
func (m ReportFormModal) IsEdit() bool {
	return m.Editing != nil && m.Editing.HasID()
}

// TokenModal collects a new bearer token.
type TokenModal struct {
	Input string
}

func (TokenModal) modalKind() string { return "token" }

// ModalKind names the open modal, or "" when none is open.
func ModalKind(m Modal) string {
	if m == nil {
		return ""
	}
	return m.modalKind()
}

func cloneModal(m Modal) Modal {
	switch v := m.(type) {
	case ChartModal:
		v.Dataset = v.Dataset.clone()
		return v
	case ReportFormModal:
		if v.Editing != nil {
			editing := v.Editing.clone()
			v.Editing = &editing
		}
		return v
	default:
		return m
	}
}
