package types

// Event names carried on the real-time channel.
const (
	EventConnected             = "connected"
	EventUpdate                = "update"
	EventDriverRequest         = "driverRequest"
	EventRequestResponse       = "requestResponse"
	EventDriverArrived         = "driverArrived"
	EventDriverStartTheRace    = "driverStartTheRace"
	EventRideFinished          = "rideFinished"
	EventPeakHourStatusChanged = "peak_hour_status_changed"
	EventCall                  = "call"
	EventAnswer                = "answer"
	EventCandidate             = "candidate"
	EventEndCall               = "endCall"
	EventCallEnded             = "callEnded"
	EventWhereDriver           = "wheredriverID"
	EventWhereDriverResponse   = "wheredriverIDResponse"
	EventError                 = "error"
)

// Snapshot kinds of the update event.
const (
	UpdateInitial = "initial"
	UpdateChanged = "update"
)
