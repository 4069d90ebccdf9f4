package model_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

type reportSpec struct {
	sector         string
	description    string
	patient        string
	incidentDate   string
	classification types.Classification
	damage         types.DamageGrade
}

func buildReports(t *testing.T, specs ...reportSpec) []*model.IncidentReport {
	t.Helper()
	reports := make([]*model.IncidentReport, 0, len(specs))
	for i, s := range specs {
		req := validRequest()
		req.NotifiedSector = s.sector
		if s.description != "" {
			req.Description = s.description
		}
		if s.incidentDate != "" {
			req.IncidentDate = s.incidentDate
		}
		req.PatientName = s.patient
		req.Classification = s.classification
		req.DamageGrade = s.damage

		r, err := model.NewReport(req, types.FirstNotificationNumber+types.NotificationNumber(i), baseTime)
		gt.NoError(t, err).Required()
		reports = append(reports, r)
	}
	return reports
}

func numbers(reports []*model.IncidentReport) []int {
	out := []int{}
	for _, r := range reports {
		out = append(out, r.Number.Int())
	}
	return out
}

func TestTopSectorsByVolume(t *testing.T) {
	reports := buildReports(t,
		reportSpec{sector: "C"},
		reportSpec{sector: "A"},
		reportSpec{sector: "B"},
		reportSpec{sector: "A"},
		reportSpec{sector: "B"},
		reportSpec{sector: "A"},
	)

	t.Run("top two", func(t *testing.T) {
		got := model.TopSectorsByVolume(reports, 2)
		want := []model.SectorCount{{Sector: "A", Count: 3}, {Sector: "B", Count: 2}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
	})

	t.Run("n larger than sectors", func(t *testing.T) {
		gt.A(t, model.TopSectorsByVolume(reports, 10)).Length(3)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		tied := buildReports(t,
			reportSpec{sector: "UTI Adulto"},
			reportSpec{sector: "OPME"},
			reportSpec{sector: "Farmácia"},
			reportSpec{sector: "OPME"},
			reportSpec{sector: "UTI Adulto"},
		)
		got := model.TopSectorsByVolume(tied, 3)
		want := []model.SectorCount{
			{Sector: "UTI Adulto", Count: 2},
			{Sector: "OPME", Count: 2},
			{Sector: "Farmácia", Count: 1},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected result (-want +got):\n%s", diff)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		gt.A(t, model.TopSectorsByVolume(nil, 3)).Length(0)
		gt.A(t, model.TopSectorsByVolume(reports, 0)).Length(0)
	})
}

func TestFilterByQueryMonthAndIndicator(t *testing.T) {
	reports := buildReports(t,
		reportSpec{sector: "Farmácia", description: "Dose dobrada de insulina", patient: "Maria Silva", incidentDate: "2025-03-02", damage: types.DamageGradeSevere},
		reportSpec{sector: "OPME", description: "Material sem etiqueta", patient: "João Souza", incidentDate: "2025-02-14", classification: types.ClassificationNearMiss},
		reportSpec{sector: "UTI Adulto", description: "Paciente caiu do leito", patient: "Ana Lima", incidentDate: "2025-03-20"},
	)
	gt.NoError(t, reports[2].Dispatch(baseTime, model.DefaultSLAWindow)).Required()
	late := reports[2].Deadline.Add(time.Hour)

	testCases := []struct {
		name      string
		query     string
		month     string
		indicator types.Indicator
		now       time.Time
		want      []int
	}{
		{"no filter", "", "", types.IndicatorNone, baseTime, []int{1000, 1001, 1002}},
		{"description case-insensitive", "INSULINA", "", types.IndicatorNone, baseTime, []int{1000}},
		{"sector substring", "opm", "", types.IndicatorNone, baseTime, []int{1001}},
		{"patient name", "lima", "", types.IndicatorNone, baseTime, []int{1002}},
		{"display number", "1001", "", types.IndicatorNone, baseTime, []int{1001}},
		{"month label", "", "mar.", types.IndicatorNone, baseTime, []int{1000, 1002}},
		{"month mismatch", "", "jan.", types.IndicatorNone, baseTime, []int{}},
		{"severe harm", "", "", types.IndicatorSevereHarm, baseTime, []int{1000}},
		{"near miss", "", "", types.IndicatorNearMiss, baseTime, []int{1001}},
		{"overdue before deadline", "", "", types.IndicatorOverdue, baseTime, []int{}},
		{"overdue after deadline", "", "", types.IndicatorOverdue, late, []int{1002}},
		{"combined", "paciente", "mar.", types.IndicatorOverdue, late, []int{1002}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := model.FilterByQueryMonthAndIndicator(reports, tc.query, tc.month, tc.indicator, tc.now)
			if diff := cmp.Diff(tc.want, numbers(got)); diff != "" {
				t.Errorf("unexpected reports (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterByQualityTab(t *testing.T) {
	reports := buildReports(t,
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
	)
	gt.NoError(t, reports[1].Dispatch(baseTime, model.DefaultSLAWindow))
	gt.NoError(t, reports[2].Dispatch(baseTime, model.DefaultSLAWindow))
	gt.NoError(t, reports[3].Dispatch(baseTime, model.DefaultSLAWindow))
	gt.NoError(t, reports[3].Complete(&model.Analysis{}, baseTime))
	late := reports[2].Deadline.Add(time.Hour)

	testCases := []struct {
		tab  types.QualityTab
		want []int
	}{
		{types.QualityTabAll, []int{1000, 1001, 1002, 1003}},
		{types.QualityTabPending, []int{1000}},
		{types.QualityTabAnalyzing, []int{1001, 1002}},
		{types.QualityTabCompleted, []int{1003}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.tab), func(t *testing.T) {
			got := model.FilterByQualityTab(reports, tc.tab, late)
			if diff := cmp.Diff(tc.want, numbers(got)); diff != "" {
				t.Errorf("unexpected reports (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("apply filter combines tab and indicator", func(t *testing.T) {
		got := model.ApplyQualityFilter(reports, model.QualityFilter{
			Tab:       types.QualityTabAnalyzing,
			Indicator: types.IndicatorOverdue,
		}, late)
		gt.A(t, got).Length(2)
	})
}

func TestFilterBySectorTabAndStatus(t *testing.T) {
	reports := buildReports(t,
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "Farmácia"},
		reportSpec{sector: "OPME"},
	)
	for _, r := range reports[1:] {
		gt.NoError(t, r.Dispatch(baseTime, model.DefaultSLAWindow)).Required()
	}
	gt.NoError(t, reports[2].Complete(&model.Analysis{}, baseTime))
	late := reports[3].Deadline.Add(time.Hour)
	gt.NoError(t, reports[3].CloseWithoutAction(late))

	testCases := []struct {
		sector string
		tab    types.SectorTab
		want   []int
	}{
		{"Farmácia", types.SectorTabPending, []int{1001}},
		{"Farmácia", types.SectorTabCompleted, []int{1002}},
		{"Farmácia", types.SectorTabArchived, []int{1003}},
		{"OPME", types.SectorTabPending, []int{1004}},
		{"Hotelaria", types.SectorTabPending, []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.sector+"/"+string(tc.tab), func(t *testing.T) {
			got := model.FilterBySectorTabAndStatus(reports, tc.sector, tc.tab, late)
			if diff := cmp.Diff(tc.want, numbers(got)); diff != "" {
				t.Errorf("unexpected reports (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("overdue stays on the pending tab", func(t *testing.T) {
		got := model.FilterBySectorTabAndStatus(reports, "Farmácia", types.SectorTabPending, late)
		gt.A(t, got).Length(1)
		gt.Equal(t, types.ReportStatusOverdue, got[0].EffectiveStatus(late))
	})
}

func TestSummarizeIndicators(t *testing.T) {
	reports := buildReports(t,
		reportSpec{sector: "Farmácia", damage: types.DamageGradeSevere},
		reportSpec{sector: "OPME", classification: types.ClassificationNearMiss},
		reportSpec{sector: "OPME"},
	)
	gt.NoError(t, reports[2].Dispatch(baseTime, model.DefaultSLAWindow))
	late := reports[2].Deadline.Add(time.Hour)

	got := model.SummarizeIndicators(reports, late)
	want := model.Indicators{Total: 3, SevereHarm: 1, NearMiss: 1, Overdue: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected indicators (-want +got):\n%s", diff)
	}
}

func TestParseQualityFilter(t *testing.T) {
	t.Run("empty parameters select everything", func(t *testing.T) {
		f, err := model.ParseQualityFilter("", "", "", "")
		gt.NoError(t, err)
		gt.Equal(t, model.QualityFilter{}, f)
	})

	t.Run("valid parameters", func(t *testing.T) {
		f, err := model.ParseQualityFilter("opme", "abr.", "analyzing", "near-miss")
		gt.NoError(t, err)
		gt.Equal(t, model.QualityFilter{
			Query:     "opme",
			Month:     "abr.",
			Tab:       types.QualityTabAnalyzing,
			Indicator: types.IndicatorNearMiss,
		}, f)
	})

	testCases := []struct {
		name                  string
		month, tab, indicator string
		field                 string
	}{
		{"unknown tab", "", "archived", "", "tab"},
		{"unknown indicator", "", "", "late", "indicator"},
		{"unknown month", "April", "", "", "month"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.ParseQualityFilter("", tc.month, tc.tab, tc.indicator)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
			field, _ := goerr.Values(err)["field"].(string)
			gt.Equal(t, tc.field, field)
		})
	}
}
