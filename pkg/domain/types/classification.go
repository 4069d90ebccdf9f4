package types

// Classification is the safety classification of an incident
type Classification string

const (
	ClassificationNonConformity    Classification = "NON_CONFORMITY"
	ClassificationRiskCircumstance Classification = "RISK_CIRCUMSTANCE"
	ClassificationNotApplicable    Classification = "NOT_APPLICABLE"
	ClassificationNoHarmIncident   Classification = "NO_HARM_INCIDENT"
	ClassificationHarmIncident     Classification = "HARM_INCIDENT"
	ClassificationNearMiss         Classification = "NEAR_MISS"
)

// AllClassifications lists classifications in intake form order
var AllClassifications = []Classification{
	ClassificationNonConformity,
	ClassificationRiskCircumstance,
	ClassificationNotApplicable,
	ClassificationNoHarmIncident,
	ClassificationHarmIncident,
	ClassificationNearMiss,
}

// String returns the string representation
func (c Classification) String() string {
	return string(c)
}

// IsValid checks if the classification is known
func (c Classification) IsValid() bool {
	for _, v := range AllClassifications {
		if c == v {
			return true
		}
	}
	return false
}

// Label returns the display label
func (c Classification) Label() string {
	switch c {
	case ClassificationNonConformity:
		return "Não conformidade"
	case ClassificationRiskCircumstance:
		return "Circunstância de risco"
	case ClassificationNotApplicable:
		return "Não se aplica"
	case ClassificationNoHarmIncident:
		return "Incidente sem dano"
	case ClassificationHarmIncident:
		return "Incidente com dano"
	case ClassificationNearMiss:
		return "Quase erro (near miss)"
	default:
		return string(c)
	}
}

// DamageGrade is the severity of harm caused to the patient
type DamageGrade string

const (
	DamageGradeNone          DamageGrade = "NONE"
	DamageGradeMild          DamageGrade = "MILD"
	DamageGradeModerate      DamageGrade = "MODERATE"
	DamageGradeSevere        DamageGrade = "SEVERE"
	DamageGradeDeath         DamageGrade = "DEATH"
	DamageGradeNotApplicable DamageGrade = "NOT_APPLICABLE"
)

// AllDamageGrades lists damage grades in intake form order
var AllDamageGrades = []DamageGrade{
	DamageGradeNone,
	DamageGradeMild,
	DamageGradeModerate,
	DamageGradeSevere,
	DamageGradeDeath,
	DamageGradeNotApplicable,
}

// String returns the string representation
func (d DamageGrade) String() string {
	return string(d)
}

// IsValid checks if the damage grade is known
func (d DamageGrade) IsValid() bool {
	for _, v := range AllDamageGrades {
		if d == v {
			return true
		}
	}
	return false
}

// Label returns the display label
func (d DamageGrade) Label() string {
	switch d {
	case DamageGradeNone:
		return "Nenhum"
	case DamageGradeMild:
		return "Leve"
	case DamageGradeModerate:
		return "Moderado"
	case DamageGradeSevere:
		return "Grave"
	case DamageGradeDeath:
		return "Óbito"
	case DamageGradeNotApplicable:
		return "Não se aplica"
	default:
		return string(d)
	}
}

// Origin is the channel through which a report arrived
type Origin string

const (
	OriginPortal Origin = "PORTAL"
	OriginQRCode Origin = "QR_CODE"
	OriginManual Origin = "MANUAL"
)

// AllOrigins lists the intake channels
var AllOrigins = []Origin{OriginPortal, OriginQRCode, OriginManual}

// IsValid checks if the origin is known
func (o Origin) IsValid() bool {
	switch o {
	case OriginPortal, OriginQRCode, OriginManual:
		return true
	default:
		return false
	}
}

// Period is the time-of-day shift in which the incident happened
type Period string

const (
	PeriodDay   Period = "DAY"   // 07h to 19h
	PeriodNight Period = "NIGHT" // 19h to 07h
)

// AllPeriods lists the shifts
var AllPeriods = []Period{PeriodDay, PeriodNight}

// IsValid checks if the period is known
func (p Period) IsValid() bool {
	return p == PeriodDay || p == PeriodNight
}
