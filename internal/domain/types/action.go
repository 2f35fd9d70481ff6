package types

// Log actions shared by background loops and adapters.
const (
	ActionTrackingSweep     = "tracking_sweep"
	ActionPeakHourScan      = "peak_hour_scan"
	ActionTripRecording     = "trip_recording"
	ActionConfigChange      = "config_change_received"
	ActionEventRelay        = "event_relay"
	ActionWalletDebit       = "wallet_debit"
	ActionChatPurge         = "chat_purge"
	ActionNotifyRider       = "notify_rider"
	ActionRouteLookup       = "route_lookup"
	ActionServerStart       = "http_server_start"
	ActionServerStop        = "http_server_stop"
	ActionApplicationClosed = "application_closed"

	ActionExternalServiceFailed     = "external_service_failed"
	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionCreateRequest = "create_request"
	ActionAcceptRequest = "accept_request"
	ActionDenyRequest   = "deny_request"
	ActionCancelRequest = "cancel_request"
	ActionDriverArrived = "driver_arrived"
	ActionStartRace     = "start_race"
	ActionFinishRace    = "finish_race"
)
