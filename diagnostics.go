package uds

/*
ServerDiagnostics is a snapshot of the server's counters, the UDS
counterpart to rolfl-modbus's ServerDiagnostics (serverDiagnostics.go).
The teacher's version is a concurrent actor (a channel-driven goroutine
guarding the counters against simultaneous access from multiple Modbus
client/server goroutines); this engine is single-threaded and cooperative
(§5), so the counters are a plain struct mutated only from within Poll.
*/

// ServerDiagnostics summarizes the server's activity since construction.
type ServerDiagnostics struct {
	RequestsTotal          int
	NegativeResponsesTotal int
	SessionTimeouts        int
	ActiveTransferSession  bool
}

type serverDiagnostics struct {
	requests          int
	negativeResponses int
	sessionTimeouts   int
}

func (d *serverDiagnostics) snapshot(activeSession bool) ServerDiagnostics {
	return ServerDiagnostics{
		RequestsTotal:          d.requests,
		NegativeResponsesTotal: d.negativeResponses,
		SessionTimeouts:        d.sessionTimeouts,
		ActiveTransferSession:  activeSession,
	}
}

func (d *serverDiagnostics) reset() {
	*d = serverDiagnostics{}
}
