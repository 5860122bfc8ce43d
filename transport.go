package uds

/*
§6: the external collaborators this engine consumes but never implements --
segmentation transport, bus driver, clock source. Out of scope per
spec.md §1 ("transport segmentation" / "the underlying bus driver" are
explicit non-goals); only the narrow interfaces are defined here. A fake
implementation suitable for tests lives in package udstest, grounded on
rolfl-modbus's tcp.go/rtu.go framing loops but collapsed to the
single-threaded, no-goroutine model §5 mandates.
*/

// SendStatus reports whether a Link's outgoing message has finished
// transmitting.
type SendStatus int

const (
	// Idle: no outgoing message is in flight; the link's send buffer can
	// accept a new message.
	Idle SendStatus = iota
	// InProgress: a previously queued message is still being transmitted
	// (e.g. a multi-frame segmentation sequence underneath).
	InProgress
)

// ReceiveStatus reports the outcome of draining one message from a Link.
type ReceiveStatus int

const (
	// ReceiveOk: a whole message was copied in to the caller's buffer.
	ReceiveOk ReceiveStatus = iota
	// ReceiveNoData: no whole message is currently buffered.
	ReceiveNoData
	// ReceiveError: the segmentation layer detected a transport-level
	// error; non-fatal to the server, aborts this one exchange only (§7).
	ReceiveError
)

// Link is one addressing channel (physical or functional) of the
// segmentation transport beneath UDS. It is assumed to deliver whole
// request messages and accept whole response messages atomically -- §1.
type Link interface {
	// OnFrame hands one incoming bus frame to the link's segmentation
	// bookkeeping.
	OnFrame(data []byte)
	// Poll lets the link perform periodic segmentation/timer bookkeeping.
	Poll()
	// Send queues a whole message for transmission.
	Send(msg []byte) error
	// Receive drains one whole message, if any is ready.
	Receive(out []byte) (n int, status ReceiveStatus)
	// SendStatus reports whether the previously queued Send has finished.
	SendStatus() SendStatus
}

// Bus is the raw frame-level transport beneath the Links -- CAN or
// equivalent. Consumed, never implemented, by this package.
type Bus interface {
	// CanTx transmits one bus frame carrying data (at most 8 bytes) under
	// the given arbitration ID.
	CanTx(arbID uint32, data []byte) error
	// CanRxPoll non-blockingly receives one bus frame, if any has arrived.
	CanRxPoll() (arbID uint32, data []byte, ok bool)
}

// ClockFunc is a monotonic millisecond counter; may wrap (§5, §6.3).
type ClockFunc func() uint32
