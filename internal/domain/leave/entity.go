package leave

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request is a leave request over an inclusive date range. PaidDays and
// UnpaidDays are consumed sequentially across the span when the range is
// classified day by day.
type Request struct {
	ID         string
	TenantID   string
	StaffID    string
	CategoryID *string
	StartDate  time.Time
	EndDate    time.Time
	PaidDays   int
	UnpaidDays int
	Reason     *string
	Status     RequestStatus
	DecidedBy  *string
	DecidedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	StaffName *string
}

type CycleType string

const (
	CycleMonthly   CycleType = "monthly"
	CycleQuarterly CycleType = "quarterly"
	CycleYearly    CycleType = "yearly"
)

// UnusedRule is the disposition of a category's unused remainder at cycle
// rollover.
type UnusedRule string

const (
	UnusedLapse        UnusedRule = "lapse"
	UnusedCarryForward UnusedRule = "carry_forward"
	UnusedEncash       UnusedRule = "encash"
)

// Category is one leave category on a template, with its per-cycle
// entitlement and rollover rule.
type Category struct {
	ID              string
	TemplateID      string
	Name            string
	LeaveCount      float64
	UnusedRule      UnusedRule
	CarryLimitDays  *float64
	EncashLimitDays *float64
}

type Template struct {
	ID         string
	TenantID   string
	Name       string
	CycleType  CycleType
	Categories []Category
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Assignment binds a staff member to a leave template, effective-dated.
type Assignment struct {
	ID            string
	TenantID      string
	StaffID       string
	TemplateID    string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Template      Template
}

// Balance is one staff member's balance for one category and cycle window.
// At most one row exists per (staff, category, cycle start); the allocator
// creates it once and only usage accounting mutates it afterwards.
type Balance struct {
	ID             string
	TenantID       string
	StaffID        string
	CategoryID     string
	CycleStart     time.Time
	CycleEnd       time.Time
	Allocated      float64
	CarriedForward float64
	Used           float64
	Encashed       float64
	Remaining      float64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields
	CategoryName *string
}
