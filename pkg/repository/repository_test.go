package repository_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"github.com/secmon-lab/vigia/pkg/repository"
)

func newTestReport(t *testing.T, repo interfaces.Repository, sector string) *model.IncidentReport {
	t.Helper()
	ctx := context.Background()

	number, err := repo.GetNextReportNumber(ctx)
	gt.NoError(t, err).Required()

	report, err := model.NewReport(&model.CreateReportRequest{
		IncidentDate:   "2025-03-08",
		NotifiedSector: sector,
		IncidentType:   "Queda do paciente",
		Description:    "paciente caiu",
		PatientName:    "Maria Silva",
	}, number, time.Now())
	gt.NoError(t, err).Required()
	return report
}

func testRepository(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("PutAndGetReport", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		report := newTestReport(t, repo, "Farmácia")
		gt.NoError(t, repo.PutReport(ctx, report))

		retrieved, err := repo.GetReport(ctx, report.ID)
		gt.NoError(t, err)
		gt.Equal(t, report.ID, retrieved.ID)
		gt.Equal(t, report.Number, retrieved.Number)
		gt.Equal(t, report.NotifiedSector, retrieved.NotifiedSector)
		gt.Equal(t, report.IncidentType, retrieved.IncidentType)
		gt.Equal(t, report.Description, retrieved.Description)
		gt.Equal(t, report.PatientName, retrieved.PatientName)
		gt.Equal(t, report.Month, retrieved.Month)
		gt.Equal(t, types.ReportStatusPending, retrieved.Status)
		gt.V(t, retrieved.Deadline).Nil()
		gt.V(t, retrieved.Analysis).Nil()
		gt.True(t, report.CreatedAt.Sub(retrieved.CreatedAt).Abs() < time.Second)
	})

	t.Run("PutReportOverwrites", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		report := newTestReport(t, repo, "OPME")
		gt.NoError(t, repo.PutReport(ctx, report))

		now := time.Now()
		gt.NoError(t, report.Dispatch(now, model.DefaultSLAWindow))
		gt.NoError(t, report.SaveDraft(&model.Analysis{
			Ishikawa: model.Ishikawa{
				Materials: model.IshikawaEntry{Cause: "Material vencido", Details: "lote 42"},
			},
			LondonProtocolRequired: true,
		}, now))
		gt.NoError(t, repo.PutReport(ctx, report))

		retrieved, err := repo.GetReport(ctx, report.ID)
		gt.NoError(t, err)
		gt.Equal(t, types.ReportStatusAnalyzing, retrieved.Status)
		gt.True(t, retrieved.IsSentToArea)
		gt.V(t, retrieved.Deadline).NotNil()
		gt.True(t, report.Deadline.Sub(*retrieved.Deadline).Abs() < time.Second)
		gt.V(t, retrieved.Analysis).NotNil()
		gt.Equal(t, "Material vencido", retrieved.Analysis.Ishikawa.Materials.Cause)
		gt.Equal(t, "lote 42", retrieved.Analysis.Ishikawa.Materials.Details)
		gt.True(t, retrieved.Analysis.LondonProtocolRequired)
	})

	t.Run("PutReportRejectsInvalid", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		gt.Error(t, repo.PutReport(ctx, nil))

		report := newTestReport(t, repo, "OPME")
		report.Status = types.ReportStatusOverdue
		gt.Error(t, repo.PutReport(ctx, report))
	})

	t.Run("GetReport_NotFound", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		_, err := repo.GetReport(context.Background(), types.NewReportID())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrReportNotFound))
		gt.True(t, goerr.HasTag(err, model.ErrTagNotFound))
	})

	t.Run("ListReportsInCreationOrder", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		first := newTestReport(t, repo, "Farmácia")
		second := newTestReport(t, repo, "OPME")
		third := newTestReport(t, repo, "UTI Adulto")

		// stored out of order
		gt.NoError(t, repo.PutReport(ctx, third))
		gt.NoError(t, repo.PutReport(ctx, first))
		gt.NoError(t, repo.PutReport(ctx, second))

		reports, err := repo.ListReports(ctx)
		gt.NoError(t, err)

		var ids []types.ReportID
		for _, r := range reports {
			if r.ID == first.ID || r.ID == second.ID || r.ID == third.ID {
				ids = append(ids, r.ID)
			}
		}
		gt.A(t, ids).Length(3)
		gt.Equal(t, first.ID, ids[0])
		gt.Equal(t, second.ID, ids[1])
		gt.Equal(t, third.ID, ids[2])
	})

	t.Run("GetNextReportNumberIncreases", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		prev, err := repo.GetNextReportNumber(ctx)
		gt.NoError(t, err)
		gt.True(t, prev >= types.FirstNotificationNumber)

		for range 5 {
			next, err := repo.GetNextReportNumber(ctx)
			gt.NoError(t, err)
			gt.True(t, next > prev)
			prev = next
		}
	})

	t.Run("Sectors", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		sector, err := model.NewSector("Centro Cirúrgico")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutSector(ctx, sector))

		sector.Toggle()
		gt.NoError(t, repo.PutSector(ctx, sector))

		retrieved, err := repo.GetSector(ctx, sector.ID)
		gt.NoError(t, err)
		gt.Equal(t, "Centro Cirúrgico", retrieved.Name)
		gt.False(t, retrieved.Active)

		sectors, err := repo.ListSectors(ctx)
		gt.NoError(t, err)
		found := false
		for _, s := range sectors {
			if s.ID == sector.ID {
				found = true
			}
		}
		gt.True(t, found)

		_, err = repo.GetSector(ctx, types.NewSectorID())
		gt.True(t, errors.Is(err, model.ErrSectorNotFound))
	})

	t.Run("Users", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		user, err := model.NewUser(&model.CreateUserRequest{
			Name:    "Carlos Gestor",
			Email:   "carlos@hospital.com",
			Role:    model.RoleManager,
			Sectors: []string{"OPME", "Farmácia"},
		})
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutUser(ctx, user))

		retrieved, err := repo.GetUser(ctx, user.ID)
		gt.NoError(t, err)
		gt.Equal(t, user.Email, retrieved.Email)
		gt.Equal(t, user.Role, retrieved.Role)
		gt.A(t, retrieved.Sectors).Length(2)
		gt.True(t, retrieved.Active)

		users, err := repo.ListUsers(ctx)
		gt.NoError(t, err)
		gt.True(t, len(users) >= 1)

		_, err = repo.GetUser(ctx, types.NewUserID())
		gt.True(t, errors.Is(err, model.ErrUserNotFound))
	})

	t.Run("Roles", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		role, err := model.NewRole("Auditor", []string{"read"})
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutRole(ctx, role))

		retrieved, err := repo.GetRole(ctx, role.ID)
		gt.NoError(t, err)
		gt.Equal(t, "Auditor", retrieved.Name)
		gt.A(t, retrieved.Permissions).Length(1)

		roles, err := repo.ListRoles(ctx)
		gt.NoError(t, err)
		gt.True(t, len(roles) >= 1)

		_, err = repo.GetRole(ctx, types.NewRoleID())
		gt.True(t, errors.Is(err, model.ErrRoleNotFound))
	})
}

// testFreshRepository covers behavior that only holds on an empty store
func testFreshRepository(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("FirstNumberIs1000", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		first, err := repo.GetNextReportNumber(ctx)
		gt.NoError(t, err)
		gt.Equal(t, types.NotificationNumber(1000), first)

		second, err := repo.GetNextReportNumber(ctx)
		gt.NoError(t, err)
		gt.Equal(t, types.NotificationNumber(1001), second)
	})

	t.Run("EmptyLists", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		reports, err := repo.ListReports(ctx)
		gt.NoError(t, err)
		gt.A(t, reports).Length(0)

		sectors, err := repo.ListSectors(ctx)
		gt.NoError(t, err)
		gt.A(t, sectors).Length(0)
	})
}

func TestMemoryRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		return repository.NewMemory()
	}
	testRepository(t, newRepo)
	testFreshRepository(t, newRepo)
}

func TestSQLiteRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
		repo, err := repository.NewSQLite(ctx, filepath.Join(t.TempDir(), "vigia.db"))
		gt.NoError(t, err).Required()
		return repo
	}
	testRepository(t, newRepo)
	testFreshRepository(t, newRepo)

	t.Run("ReopenKeepsData", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "vigia.db")

		repo, err := repository.NewSQLite(ctx, path)
		gt.NoError(t, err).Required()
		report := newTestReport(t, repo, "Hotelaria")
		gt.NoError(t, repo.PutReport(ctx, report))
		gt.NoError(t, repo.Close())

		reopened, err := repository.NewSQLite(ctx, path)
		gt.NoError(t, err).Required()
		defer reopened.Close()

		retrieved, err := reopened.GetReport(ctx, report.ID)
		gt.NoError(t, err)
		gt.Equal(t, report.Number, retrieved.Number)

		next, err := reopened.GetNextReportNumber(ctx)
		gt.NoError(t, err)
		gt.Equal(t, report.Number+1, next)
	})
}

func TestFirestoreRepository(t *testing.T) {
	// Skip test if Firestore test environment variables are not set
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	if projectID == "" || databaseID == "" {
		t.Skip("Skipping Firestore test: TEST_FIRESTORE_PROJECT and TEST_FIRESTORE_DATABASE must be set")
	}

	testRepository(t, func(t *testing.T) interfaces.Repository {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx = ctxlog.With(ctx, logger)

		repo, err := repository.NewFirestore(ctx, projectID, databaseID)
		gt.NoError(t, err)
		return repo
	})
}
