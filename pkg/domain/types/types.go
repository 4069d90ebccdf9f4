package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ReportID represents an incident report identifier
type ReportID string

// String returns the string representation
func (id ReportID) String() string {
	return string(id)
}

// Validate checks if the report ID is non-empty
func (id ReportID) Validate() error {
	if id == "" {
		return goerr.New("report ID cannot be empty")
	}
	return nil
}

// NewReportID creates a new ReportID using UUID v7 so that IDs sort by creation time
func NewReportID() ReportID {
	id, err := uuid.NewV7()
	if err != nil {
		return ReportID(uuid.New().String())
	}
	return ReportID(id.String())
}

// NotificationNumber is the sequential display number of a report
type NotificationNumber int

// FirstNotificationNumber is the number assigned to the first report
const FirstNotificationNumber NotificationNumber = 1000

// Int returns the int representation
func (n NotificationNumber) Int() int {
	return int(n)
}

// SectorID represents a hospital sector identifier
type SectorID string

// String returns the string representation
func (id SectorID) String() string {
	return string(id)
}

// NewSectorID creates a new SectorID
func NewSectorID() SectorID {
	return SectorID(uuid.New().String())
}

// UserID represents a staff user identifier
type UserID string

// String returns the string representation
func (id UserID) String() string {
	return string(id)
}

// NewUserID creates a new UserID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

// RoleID represents a role identifier
type RoleID string

// String returns the string representation
func (id RoleID) String() string {
	return string(id)
}

// NewRoleID creates a new RoleID
func NewRoleID() RoleID {
	return RoleID(uuid.New().String())
}
