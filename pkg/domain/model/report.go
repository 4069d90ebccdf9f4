package model

import (
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// DefaultSLAWindow is the time a sector has to finish its analysis after dispatch
const DefaultSLAWindow = 7 * 24 * time.Hour

// DateLayout is the ISO date layout used for calendar dates on a report
const DateLayout = "2006-01-02"

// Defaults applied by the intake form when the reporter leaves a field untouched
const (
	DefaultCarePhase            = "Durante a prestação de cuidados"
	DefaultIdentificationMethod = "Identificação Espontânea"
)

// CreateReportRequest carries the fields submitted by the public intake form
type CreateReportRequest struct {
	Origin               types.Origin         `json:"origin"`
	IncidentDate         string               `json:"incidentDate"`
	NotificationDate     string               `json:"notificationDate"`
	Period               types.Period         `json:"period"`
	ReportingSector      string               `json:"reportingSector"`
	NotifiedSector       string               `json:"notifiedSector"`
	PatientRA            string               `json:"patientRA"`
	PatientName          string               `json:"patientName"`
	PatientDOB           string               `json:"patientDOB"`
	IncidentType         string               `json:"incidentType"`
	Classification       types.Classification `json:"classification"`
	DamageGrade          types.DamageGrade    `json:"damageGrade"`
	CarePhase            string               `json:"carePhase"`
	IdentificationMethod string               `json:"identificationMethod"`
	Description          string               `json:"description"`
	ProfessionalCategory string               `json:"professionalCategory"`
	InvolvedPeople       string               `json:"involvedPeople"`
	InvolvedProduct      string               `json:"involvedProduct"`
	NotivisaNotified     bool                 `json:"notivisaNotified"`
	ONANotified          bool                 `json:"onaNotified"`
}

// IncidentReport is a single reported patient-safety event with its investigation record
type IncidentReport struct {
	ID                   types.ReportID           `json:"id"`
	Number               types.NotificationNumber `json:"notificationNumber"`
	Origin               types.Origin             `json:"origin"`
	IncidentDate         string                   `json:"incidentDate"`
	NotificationDate     string                   `json:"notificationDate"`
	Month                string                   `json:"month"`
	Year                 int                      `json:"year"`
	Period               types.Period             `json:"period"`
	ReportingSector      string                   `json:"reportingSector"`
	NotifiedSector       string                   `json:"notifiedSector"`
	PatientRA            string                   `json:"patientRA"`
	PatientName          string                   `json:"patientName"`
	PatientDOB           string                   `json:"patientDOB"`
	IncidentType         string                   `json:"incidentType"`
	Classification       types.Classification     `json:"classification"`
	DamageGrade          types.DamageGrade        `json:"damageGrade"`
	CarePhase            string                   `json:"carePhase"`
	IdentificationMethod string                   `json:"identificationMethod"`
	Description          string                   `json:"description"`
	ProfessionalCategory string                   `json:"professionalCategory"`
	InvolvedPeople       string                   `json:"involvedPeople,omitempty"`
	InvolvedProduct      string                   `json:"involvedProduct,omitempty"`
	NotivisaNotified     bool                     `json:"notivisaNotified"`
	ONANotified          bool                     `json:"onaNotified"`

	IsSentToArea        bool               `json:"isSentToArea"`
	Deadline            *time.Time         `json:"deadline,omitempty"`
	Status              types.ReportStatus `json:"status"`
	Analysis            *Analysis          `json:"analysis,omitempty"`
	PriorityRequested   bool               `json:"priorityRequested"`
	ClosedWithoutAction bool               `json:"closedWithoutAction"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty"`
}

// NewReport validates an intake request and builds a PENDING report.
// Catalog membership and sector activity are checked by the caller, which owns the reference data.
func NewReport(req *CreateReportRequest, number types.NotificationNumber, now time.Time) (*IncidentReport, error) {
	if req == nil {
		return nil, goerr.New("report request is nil", goerr.T(ErrTagValidation))
	}
	if number < types.FirstNotificationNumber {
		return nil, goerr.New("notification number out of range", goerr.V("number", number))
	}

	notifiedSector := strings.TrimSpace(req.NotifiedSector)
	if notifiedSector == "" {
		return nil, validationError("notifiedSector", "notified sector is required")
	}
	incidentType := strings.TrimSpace(req.IncidentType)
	if incidentType == "" {
		return nil, validationError("incidentType", "incident type is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, validationError("description", "description is required")
	}
	if req.IncidentDate == "" {
		return nil, validationError("incidentDate", "incident date is required")
	}
	incidentDate, err := time.Parse(DateLayout, req.IncidentDate)
	if err != nil {
		return nil, goerr.Wrap(err, "incident date must be an ISO date",
			goerr.T(ErrTagValidation),
			goerr.V("field", "incidentDate"),
			goerr.V("value", req.IncidentDate))
	}

	notificationDate := req.NotificationDate
	if notificationDate == "" {
		notificationDate = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, notificationDate); err != nil {
		return nil, goerr.Wrap(err, "notification date must be an ISO date",
			goerr.T(ErrTagValidation),
			goerr.V("field", "notificationDate"),
			goerr.V("value", notificationDate))
	}

	origin := req.Origin
	if origin == "" {
		origin = types.OriginPortal
	}
	if !origin.IsValid() {
		return nil, validationError("origin", "invalid origin")
	}

	period := req.Period
	if period == "" {
		period = types.PeriodDay
	}
	if !period.IsValid() {
		return nil, validationError("period", "invalid period")
	}

	classification := req.Classification
	if classification == "" {
		classification = types.ClassificationRiskCircumstance
	}
	if !classification.IsValid() {
		return nil, validationError("classification", "invalid classification")
	}

	damageGrade := req.DamageGrade
	if damageGrade == "" {
		damageGrade = types.DamageGradeNone
	}
	if !damageGrade.IsValid() {
		return nil, validationError("damageGrade", "invalid damage grade")
	}

	carePhase := req.CarePhase
	if carePhase == "" {
		carePhase = DefaultCarePhase
	}
	identificationMethod := req.IdentificationMethod
	if identificationMethod == "" {
		identificationMethod = DefaultIdentificationMethod
	}

	return &IncidentReport{
		ID:                   types.NewReportID(),
		Number:               number,
		Origin:               origin,
		IncidentDate:         req.IncidentDate,
		NotificationDate:     notificationDate,
		Month:                MonthLabel(incidentDate.Month()),
		Year:                 incidentDate.Year(),
		Period:               period,
		ReportingSector:      strings.TrimSpace(req.ReportingSector),
		NotifiedSector:       notifiedSector,
		PatientRA:            req.PatientRA,
		PatientName:          req.PatientName,
		PatientDOB:           req.PatientDOB,
		IncidentType:         incidentType,
		Classification:       classification,
		DamageGrade:          damageGrade,
		CarePhase:            carePhase,
		IdentificationMethod: identificationMethod,
		Description:          req.Description,
		ProfessionalCategory: req.ProfessionalCategory,
		InvolvedPeople:       req.InvolvedPeople,
		InvolvedProduct:      req.InvolvedProduct,
		NotivisaNotified:     req.NotivisaNotified,
		ONANotified:          req.ONANotified,
		IsSentToArea:         false,
		Status:               types.ReportStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func validationError(field, msg string) error {
	return goerr.New(msg, goerr.T(ErrTagValidation), goerr.V("field", field))
}

// Validate checks the invariants a stored report must satisfy
func (r *IncidentReport) Validate() error {
	if err := r.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid report ID")
	}
	if r.Number < types.FirstNotificationNumber {
		return goerr.New("notification number out of range", goerr.V("number", r.Number))
	}
	if !r.Status.IsStorable() {
		return goerr.New("status cannot be stored", goerr.V("status", r.Status))
	}
	if r.Status != types.ReportStatusPending && r.Deadline == nil {
		return goerr.New("dispatched report has no deadline", goerr.V("status", r.Status))
	}
	return nil
}

// EffectiveStatus returns OVERDUE when the deadline has passed while the sector
// still holds the report; otherwise it returns the stored status unchanged.
// All read-side filtering must use this instead of the stored field.
func EffectiveStatus(r *IncidentReport, now time.Time) types.ReportStatus {
	if r.Deadline != nil && r.Deadline.Before(now) && r.Status.IsInArea() {
		return types.ReportStatusOverdue
	}
	return r.Status
}

// EffectiveStatus is a shorthand for EffectiveStatus(r, now)
func (r *IncidentReport) EffectiveStatus(now time.Time) types.ReportStatus {
	return EffectiveStatus(r, now)
}

// RemainingDays returns ceil((deadline - now) / 1 day). The second value is
// false when no deadline has been set. Zero or negative means expired.
func (r *IncidentReport) RemainingDays(now time.Time) (int, bool) {
	if r.Deadline == nil {
		return 0, false
	}
	days := math.Ceil(r.Deadline.Sub(now).Hours() / 24)
	return int(days), true
}

// IsOverdue reports whether the effective status is OVERDUE
func (r *IncidentReport) IsOverdue(now time.Time) bool {
	return r.EffectiveStatus(now) == types.ReportStatusOverdue
}

func (r *IncidentReport) invalidTransition(op string, now time.Time) error {
	return goerr.New("operation not allowed in current status",
		goerr.T(ErrTagInvalidTransition),
		goerr.V("operation", op),
		goerr.V("reportID", r.ID),
		goerr.V("status", r.EffectiveStatus(now)))
}

// Dispatch sends a PENDING report to the notified sector and starts the SLA clock
func (r *IncidentReport) Dispatch(now time.Time, window time.Duration) error {
	if r.Status != types.ReportStatusPending || r.Deadline != nil {
		return r.invalidTransition("dispatch", now)
	}
	if window <= 0 {
		return goerr.New("SLA window must be positive", goerr.V("window", window))
	}

	deadline := now.Add(window)
	r.Status = types.ReportStatusSentToArea
	r.IsSentToArea = true
	r.Deadline = &deadline
	r.DispatchedAt = &now
	r.UpdatedAt = now
	return nil
}

// acceptsAnalysis reports whether the sector may write its analysis. OVERDUE is
// covered because it is only ever derived from SENT_TO_AREA or ANALYZING.
func (r *IncidentReport) acceptsAnalysis(now time.Time) bool {
	switch r.EffectiveStatus(now) {
	case types.ReportStatusSentToArea, types.ReportStatusAnalyzing, types.ReportStatusOverdue:
		return true
	default:
		return false
	}
}

// SaveDraft stores a partial analysis and moves the report to ANALYZING
func (r *IncidentReport) SaveDraft(analysis *Analysis, now time.Time) error {
	if !r.acceptsAnalysis(now) {
		return r.invalidTransition("save analysis draft", now)
	}

	r.Analysis = copyAnalysis(analysis)
	r.Status = types.ReportStatusAnalyzing
	r.UpdatedAt = now
	return nil
}

// Complete stores the final analysis and closes the investigation
func (r *IncidentReport) Complete(analysis *Analysis, now time.Time) error {
	if !r.acceptsAnalysis(now) {
		return r.invalidTransition("complete analysis", now)
	}

	r.Analysis = copyAnalysis(analysis)
	r.Status = types.ReportStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// RequestPriority escalates an overdue report to the sector manager. It can only be done once.
func (r *IncidentReport) RequestPriority(now time.Time) error {
	if !r.IsOverdue(now) {
		return r.invalidTransition("request priority", now)
	}
	if r.PriorityRequested {
		return goerr.New("priority already requested",
			goerr.T(ErrTagAlreadyRequested),
			goerr.V("reportID", r.ID))
	}

	r.PriorityRequested = true
	r.UpdatedAt = now
	return nil
}

// CloseWithoutAction archives an overdue report for lack of analysis
func (r *IncidentReport) CloseWithoutAction(now time.Time) error {
	if !r.IsOverdue(now) {
		return r.invalidTransition("close without action", now)
	}

	r.Status = types.ReportStatusArchived
	r.ClosedWithoutAction = true
	r.ArchivedAt = &now
	r.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the report
func (r *IncidentReport) Clone() *IncidentReport {
	c := *r
	c.Deadline = copyTime(r.Deadline)
	c.DispatchedAt = copyTime(r.DispatchedAt)
	c.CompletedAt = copyTime(r.CompletedAt)
	c.ArchivedAt = copyTime(r.ArchivedAt)
	if r.Analysis != nil {
		c.Analysis = copyAnalysis(r.Analysis)
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyAnalysis(a *Analysis) *Analysis {
	if a == nil {
		return &Analysis{}
	}
	v := *a
	return &v
}
