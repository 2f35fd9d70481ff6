package types

// RequestStatus is the lifecycle state shared by ride requests and race documents.
type RequestStatus string

func (s RequestStatus) String() string {
	return string(s)
}

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusDenied    RequestStatus = "denied"
	StatusCancelled RequestStatus = "cancelled"
	StatusArrived   RequestStatus = "arrived"
	StatusStarted   RequestStatus = "started"
	StatusFinished  RequestStatus = "finished"
)

// IsTerminal reports states that admit no further transition.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusDenied, StatusCancelled, StatusFinished:
		return true
	default:
		return false
	}
}

// ConfigStatus enables or disables a peak hour window.
type ConfigStatus string

const (
	ConfigActive   ConfigStatus = "active"
	ConfigInactive ConfigStatus = "inactive"
)

type TripStatus string

const (
	TripActive TripStatus = "active"
	TripEnded  TripStatus = "ended"
)

type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleAdmin  UserRole = "admin"
	RoleDriver UserRole = "driver"
	RoleRider  UserRole = "rider"
)
