package uds

/*
§6.4: the domain-specific service implementations this engine consumes.
Each is optional; its absence makes the corresponding service answer
kServiceNotSupported, exactly as §4.3 specifies per-handler.
*/

// SessionControlCallback backs 0x10 DiagnosticSessionControl. Returning an
// error rejects the session change with that NRC.
type SessionControlCallback func(status *ProtocolStatus, requested SessionType) error

// ECUResetCallback backs 0x11 ECUReset. powerDownTime is only read by the
// handler when requested == ResetEnableRapidPowerShutDown.
type ECUResetCallback func(status *ProtocolStatus, requested ResetType) (powerDownTime byte, err error)

// RDBICallback backs 0x22 ReadDataByIdentifier, one call per requested DID.
// The returned slice must remain valid through response emission (§6.4).
type RDBICallback func(status *ProtocolStatus, did uint16) (data []byte, err error)

// WDBICallback backs 0x2E WriteDataByIdentifier.
type WDBICallback func(status *ProtocolStatus, did uint16, data []byte) error

// GenerateSeedCallback backs the odd (requestSeed) sub-functions of 0x27
// SecurityAccess. Per §4.3: when level is already unlocked it must return
// an all-zero seed; otherwise a non-zero seed. Enforcement is the
// callback's responsibility.
type GenerateSeedCallback func(status *ProtocolStatus, level uint8, in []byte) (seed []byte, err error)

// ValidateKeyCallback backs the even (sendKey) sub-functions of 0x27
// SecurityAccess.
type ValidateKeyCallback func(status *ProtocolStatus, level uint8, key []byte) error

// CommunicationControlCallback backs 0x28 CommunicationControl.
type CommunicationControlCallback func(status *ProtocolStatus, controlType byte, communicationType byte) error

// RoutineControlCallback backs 0x31 RoutineControl's Start/Stop/
// RequestResults sub-functions.
type RoutineControlCallback func(status *ProtocolStatus, routineControlType byte, routineID uint16, optionRecord []byte) (statusRecord []byte, err error)

// RequestDownloadCallback backs 0x34 RequestDownload. On success it must
// return non-nil onTransfer/onExit callbacks and a proposed block length
// of at least 3 (§4.3); the server clamps the block length to the
// transport MTU.
type RequestDownloadCallback func(status *ProtocolStatus, dataFormatIdentifier byte, memoryAddress uint32, memorySize uint32) (onTransfer TransferCallback, onExit TransferExitCallback, maxBlockLength uint16, err error)

// ControlDTCSettingCallback backs 0x85 ControlDTCSetting. Unlike the other
// services this one has no documented callback in spec.md §4.3 ("No user
// callback; response echoes") -- kept here only as an optional hook for a
// host that wants to observe the setting change; nil is always accepted.
type ControlDTCSettingCallback func(status *ProtocolStatus, dtcSettingType byte) error

// SessionTimeoutCallback is invoked on S3 expiry. Must be side-effect-only
// (§6.4).
type SessionTimeoutCallback func()

// Callbacks bundles every optional user service implementation consumed by
// the server, mirroring the "+ one optional pointer per user service
// callback" line of spec.md §6.6.
type Callbacks struct {
	SessionControl       SessionControlCallback
	ECUReset              ECUResetCallback
	RDBI                  RDBICallback
	WDBI                  WDBICallback
	GenerateSeed          GenerateSeedCallback
	ValidateKey           ValidateKeyCallback
	CommunicationControl  CommunicationControlCallback
	RoutineControl        RoutineControlCallback
	RequestDownload       RequestDownloadCallback
	ControlDTCSetting     ControlDTCSettingCallback
}
