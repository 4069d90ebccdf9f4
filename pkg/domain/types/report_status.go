package types

// ReportStatus represents the lifecycle status of an incident report
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusSentToArea ReportStatus = "SENT_TO_AREA"
	ReportStatusAnalyzing  ReportStatus = "ANALYZING"
	ReportStatusCompleted  ReportStatus = "COMPLETED"

	// ReportStatusOverdue is never stored. It is derived at read time from the deadline.
	ReportStatusOverdue  ReportStatus = "OVERDUE"
	ReportStatusArchived ReportStatus = "ARCHIVED"
)

// String returns the string representation of the status
func (s ReportStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusSentToArea, ReportStatusAnalyzing,
		ReportStatusCompleted, ReportStatusOverdue, ReportStatusArchived:
		return true
	default:
		return false
	}
}

// IsStorable reports whether the status may be persisted on a record
func (s ReportStatus) IsStorable() bool {
	return s.IsValid() && s != ReportStatusOverdue
}

// IsTerminal returns true for COMPLETED and ARCHIVED
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusArchived
}

// IsInArea returns true while the responsible sector holds the report
func (s ReportStatus) IsInArea() bool {
	return s == ReportStatusSentToArea || s == ReportStatusAnalyzing
}

// Label returns the display label used by the hospital staff
func (s ReportStatus) Label() string {
	switch s {
	case ReportStatusPending:
		return "Pendente"
	case ReportStatusSentToArea:
		return "Enviado para Área"
	case ReportStatusAnalyzing:
		return "Em Análise"
	case ReportStatusCompleted:
		return "Concluído"
	case ReportStatusOverdue:
		return "Atrasado"
	case ReportStatusArchived:
		return "Arquivado"
	default:
		return string(s)
	}
}
