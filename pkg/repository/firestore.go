package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	reportsCollection  = "reports"
	sectorsCollection  = "sectors"
	usersCollection    = "users"
	rolesCollection    = "roles"
	countersCollection = "counters"

	// Document IDs
	reportCounterDocID = "report"

	// Field names
	fieldAllocated = "allocated"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on an invalid project or missing permissions
	_, err = client.Collection(reportsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutReport saves a report to Firestore
func (f *Firestore) PutReport(ctx context.Context, report *model.IncidentReport) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if err := report.Validate(); err != nil {
		return goerr.Wrap(err, "invalid report")
	}

	_, err := f.client.Collection(reportsCollection).Doc(report.ID.String()).Set(ctx, report)
	if err != nil {
		return goerr.Wrap(err, "failed to save report to firestore", goerr.V("id", report.ID))
	}

	return nil
}

// GetReport retrieves a report by ID
func (f *Firestore) GetReport(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	doc, err := f.client.Collection(reportsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrReportNotFound, "failed to get report", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get report from firestore", goerr.V("id", id))
	}

	var report model.IncidentReport
	if err := doc.DataTo(&report); err != nil {
		return nil, goerr.Wrap(err, "failed to decode report", goerr.V("id", id))
	}

	return &report, nil
}

// ListReports lists all reports in creation order
func (f *Firestore) ListReports(ctx context.Context) ([]*model.IncidentReport, error) {
	reports, err := listDocuments[model.IncidentReport](ctx, f.client.Collection(reportsCollection))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports")
	}

	// Sorted in memory to avoid requiring an index
	sortReports(reports)
	return reports, nil
}

// GetNextReportNumber returns the next display number using atomic increment
func (f *Firestore) GetNextReportNumber(ctx context.Context) (types.NotificationNumber, error) {
	counterDoc := f.client.Collection(countersCollection).Doc(reportCounterDocID)

	var next types.NotificationNumber
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterDoc)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				next = types.FirstNotificationNumber
				return tx.Set(counterDoc, map[string]any{
					fieldAllocated: 1,
				})
			}
			return goerr.Wrap(err, "failed to get counter document")
		}

		allocated, err := doc.DataAt(fieldAllocated)
		if err != nil {
			return goerr.Wrap(err, "failed to get allocated field")
		}

		var count int
		switch v := allocated.(type) {
		case int64:
			count = int(v)
		case int:
			count = v
		default:
			return goerr.New("unexpected type for allocated", goerr.V("value", allocated))
		}

		next = types.FirstNotificationNumber + types.NotificationNumber(count)
		return tx.Update(counterDoc, []firestore.Update{
			{Path: fieldAllocated, Value: count + 1},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next report number")
	}

	return next, nil
}

// PutSector saves a sector to Firestore
func (f *Firestore) PutSector(ctx context.Context, sector *model.Sector) error {
	if sector == nil {
		return goerr.New("sector is nil")
	}
	if sector.ID == "" {
		return goerr.New("sector ID is empty")
	}

	if _, err := f.client.Collection(sectorsCollection).Doc(sector.ID.String()).Set(ctx, sector); err != nil {
		return goerr.Wrap(err, "failed to save sector to firestore")
	}
	return nil
}

// GetSector retrieves a sector by ID
func (f *Firestore) GetSector(ctx context.Context, id types.SectorID) (*model.Sector, error) {
	var sector model.Sector
	if err := f.getDocument(ctx, sectorsCollection, id.String(), &sector, model.ErrSectorNotFound); err != nil {
		return nil, err
	}
	return &sector, nil
}

// ListSectors lists sectors in creation order
func (f *Firestore) ListSectors(ctx context.Context) ([]*model.Sector, error) {
	sectors, err := listDocuments[model.Sector](ctx, f.client.Collection(sectorsCollection))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sectors")
	}
	sortSectors(sectors)
	return sectors, nil
}

// PutUser saves a user to Firestore
func (f *Firestore) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}
	if user.ID == "" {
		return goerr.New("user ID is empty")
	}

	if _, err := f.client.Collection(usersCollection).Doc(user.ID.String()).Set(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to save user to firestore")
	}
	return nil
}

// GetUser retrieves a user by ID
func (f *Firestore) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	var user model.User
	if err := f.getDocument(ctx, usersCollection, id.String(), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists users in creation order
func (f *Firestore) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := listDocuments[model.User](ctx, f.client.Collection(usersCollection))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	sortUsers(users)
	return users, nil
}

// PutRole saves a role to Firestore
func (f *Firestore) PutRole(ctx context.Context, role *model.Role) error {
	if role == nil {
		return goerr.New("role is nil")
	}
	if role.ID == "" {
		return goerr.New("role ID is empty")
	}

	if _, err := f.client.Collection(rolesCollection).Doc(role.ID.String()).Set(ctx, role); err != nil {
		return goerr.Wrap(err, "failed to save role to firestore")
	}
	return nil
}

// GetRole retrieves a role by ID
func (f *Firestore) GetRole(ctx context.Context, id types.RoleID) (*model.Role, error) {
	var role model.Role
	if err := f.getDocument(ctx, rolesCollection, id.String(), &role, model.ErrRoleNotFound); err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles lists roles in creation order
func (f *Firestore) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := listDocuments[model.Role](ctx, f.client.Collection(rolesCollection))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roles")
	}
	sortRoles(roles)
	return roles, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) getDocument(ctx context.Context, collection, id string, dst any, notFound error) error {
	if id == "" {
		return goerr.New("document ID is empty", goerr.V("collection", collection))
	}

	doc, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(notFound, "document not found", goerr.V("collection", collection), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get document from firestore", goerr.V("collection", collection), goerr.V("id", id))
	}

	if err := doc.DataTo(dst); err != nil {
		return goerr.Wrap(err, "failed to decode document", goerr.V("collection", collection), goerr.V("id", id))
	}
	return nil
}

func listDocuments[T any](ctx context.Context, col *firestore.CollectionRef) ([]*T, error) {
	iter := col.Documents(ctx)
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", col.ID))
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", doc.Ref.ID))
		}
		out = append(out, &v)
	}

	return out, nil
}
