package staff

import "time"

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

type Staff struct {
	ID               string
	TenantID         string
	StaffCode        string
	FullName         string
	EmploymentStatus EmploymentStatus
	JoinedAt         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
