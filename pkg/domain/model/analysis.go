package model

import "github.com/m-mizutani/goerr/v2"

// IshikawaEntry is the cause selected for one 6M category plus free-text details
type IshikawaEntry struct {
	Cause   string `json:"cause"`
	Details string `json:"details"`
}

// Ishikawa is the 6M root-cause breakdown
type Ishikawa struct {
	Workforce   IshikawaEntry `json:"workforce"`
	Machines    IshikawaEntry `json:"machines"`
	Materials   IshikawaEntry `json:"materials"`
	Methods     IshikawaEntry `json:"methods"`
	Environment IshikawaEntry `json:"environment"`
	Measurement IshikawaEntry `json:"measurement"`
}

// IshikawaCategory identifies one of the 6M categories
type IshikawaCategory string

const (
	IshikawaWorkforce   IshikawaCategory = "workforce"
	IshikawaMachines    IshikawaCategory = "machines"
	IshikawaMaterials   IshikawaCategory = "materials"
	IshikawaMethods     IshikawaCategory = "methods"
	IshikawaEnvironment IshikawaCategory = "environment"
	IshikawaMeasurement IshikawaCategory = "measurement"
)

// IshikawaItem pairs a category with its entry
type IshikawaItem struct {
	Category IshikawaCategory
	Entry    IshikawaEntry
}

// Items returns the six entries in canonical order
func (x Ishikawa) Items() []IshikawaItem {
	return []IshikawaItem{
		{IshikawaWorkforce, x.Workforce},
		{IshikawaMachines, x.Machines},
		{IshikawaMaterials, x.Materials},
		{IshikawaMethods, x.Methods},
		{IshikawaEnvironment, x.Environment},
		{IshikawaMeasurement, x.Measurement},
	}
}

// MissingCategories returns the categories that have no selected cause
func (x Ishikawa) MissingCategories() []IshikawaCategory {
	var missing []IshikawaCategory
	for _, e := range x.Items() {
		if e.Entry.Cause == "" {
			missing = append(missing, e.Category)
		}
	}
	return missing
}

// ActionPlan is the 5W2H corrective action plan
type ActionPlan struct {
	What      string `json:"what"`
	Why       string `json:"why"`
	How       string `json:"how"`
	Who       string `json:"who"`
	Where     string `json:"where"`
	When      string `json:"when"`
	Cost      string `json:"cost"`
	Objective string `json:"objective"`
}

// Analysis is the root-cause analysis payload written by the sector manager.
// It is stored verbatim; drafts may be partially or entirely empty.
type Analysis struct {
	Ishikawa               Ishikawa   `json:"ishikawa"`
	ActionPlan             ActionPlan `json:"actionPlan"`
	LondonProtocolRequired bool       `json:"londonProtocolRequired"`
	LondonProtocolLink     string     `json:"londonProtocolLink,omitempty"`
}

// ValidateComplete checks the stricter completion rule: every 6M category has a
// cause and the action plan states what will be done.
func (a *Analysis) ValidateComplete() error {
	if a == nil {
		return goerr.New("analysis is required", goerr.T(ErrTagValidation))
	}

	if missing := a.Ishikawa.MissingCategories(); len(missing) > 0 {
		return goerr.New("ishikawa categories without a cause",
			goerr.T(ErrTagValidation),
			goerr.V("missing", missing))
	}

	if a.ActionPlan.What == "" {
		return goerr.New("action plan must state what will be done", goerr.T(ErrTagValidation))
	}

	return nil
}
