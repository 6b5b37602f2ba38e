package application

import "expvar"

// Counters published under /debug/vars as "accounts".
var metrics = expvar.NewMap("accounts")

const (
	metricRegistrations   = "registrations"
	metricLogins          = "logins"
	metricLoginFailures   = "login_failures"
	metricRefreshes       = "refreshes"
	metricRefreshRejected = "refresh_rejected"
	metricLogouts         = "logouts"
	metricUploadFailures  = "upload_failures"
)
