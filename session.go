package uds

/*
§4.4 transfer session: the 0x34 -> (0x36 ...) -> 0x37 download state
machine, isolated here so the §4.3 handlers stay near-stateless. Grounded
on rolfl-modbus's serverCache.go in spirit only -- the teacher's version
is a concurrent, channel-guarded actor because multiple goroutines (RTU
reader, TCP reader, client callers) share its cache. This engine is
single-threaded and cooperative (§5: "no internal threads"), so the
session is a plain struct mutated only from within Poll/dispatch -- no
locking, no channels.
*/

// TransferCallback is invoked once per accepted 0x36 TransferData block.
// Returning responsePending() defers the final answer to a later Poll, per
// §4.3's 0x36 RCRRP handling; any other non-nil error tears the session
// down and is reported as that NRC.
type TransferCallback func(status *ProtocolStatus, payload []byte) error

// TransferExitCallback is invoked once by 0x37 RequestTransferExit. It must
// write its closing payload in to out (capacity cap) and report how many
// bytes it wrote.
type TransferExitCallback func(status *ProtocolStatus, out []byte, cap int) (written int, err error)

// transferSession holds the state of one in-progress download. At most one
// exists at a time (§3).
type transferSession struct {
	requestedTransferSize uint32
	numBytesTransferred   uint32
	blockSequenceCounter  uint8
	onTransfer            TransferCallback
	onExit                TransferExitCallback
}

func newTransferSession(size uint32, onTransfer TransferCallback, onExit TransferExitCallback) *transferSession {
	return &transferSession{
		requestedTransferSize: size,
		numBytesTransferred:   0,
		blockSequenceCounter:  1,
		onTransfer:            onTransfer,
		onExit:                onExit,
	}
}

// advance moves the expected block counter forward with the intentional
// unsigned 8-bit wrap (0xFF -> 0x00) called out in §4.4.
func (t *transferSession) advance() {
	t.blockSequenceCounter++
}
