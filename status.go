package uds

// SessionType is the diagnostic session currently active (§3).
type SessionType uint8

// Standard ISO 14229 diagnostic session types this engine recognizes.
const (
	SessionDefault SessionType = 0x01
	SessionProgramming SessionType = 0x02
	SessionExtended    SessionType = 0x03
	SessionSafetySystem SessionType = 0x04
)

// ResetType identifies the requested 0x11 ECUReset sub-function.
type ResetType uint8

// Standard ISO 14229 reset types.
const (
	ResetHard                    ResetType = 0x01
	ResetKeyOffOn                ResetType = 0x02
	ResetSoft                    ResetType = 0x03
	ResetEnableRapidPowerShutDown ResetType = 0x04
	ResetDisableRapidPowerShutDown ResetType = 0x05
)

// ProtocolStatus is the mutable, server-owned protocol state readable (and,
// for securityLevel/sessionType, writable only by the server's own
// handlers) by user callbacks -- §3.
type ProtocolStatus struct {
	SessionType   SessionType
	SecurityLevel uint8
	// RCRRP is true while a deferred "response pending" is outstanding: a
	// 0x36 handler returned responsePending() and the server is waiting for
	// the transport to flush the interim 0x7F/0x78 frame before re-invoking
	// the handler.
	RCRRP bool
}

func newProtocolStatus() ProtocolStatus {
	return ProtocolStatus{
		SessionType:   SessionDefault,
		SecurityLevel: 0,
		RCRRP:         false,
	}
}
