package uds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeLink and fakeBus are minimal, package-internal stand-ins for
// exercising the RCRRP deferred-dispatch path, which needs direct access
// to the unexported responsePending() sentinel; package udstest can't be
// imported here without an import cycle back in to this package.
type fakeLink struct {
	inbound       [][]byte
	sent          [][]byte
	sendStatus    SendStatus
	sendCountdown int
}

func (f *fakeLink) push(msg []byte) { f.inbound = append(f.inbound, msg) }

func (f *fakeLink) OnFrame(data []byte) { f.push(data) }
func (f *fakeLink) Poll() {
	if f.sendCountdown > 0 {
		f.sendCountdown--
		if f.sendCountdown == 0 {
			f.sendStatus = Idle
		}
	}
}
func (f *fakeLink) Send(msg []byte) error {
	cp := append([]byte(nil), msg...)
	f.sent = append(f.sent, cp)
	return nil
}
func (f *fakeLink) Receive(out []byte) (int, ReceiveStatus) {
	if len(f.inbound) == 0 {
		return 0, ReceiveNoData
	}
	msg := f.inbound[0]
	f.inbound = f.inbound[1:]
	return copy(out, msg), ReceiveOk
}
func (f *fakeLink) SendStatus() SendStatus { return f.sendStatus }

type fakeBus struct{}

func (fakeBus) CanTx(arbID uint32, data []byte) error         { return nil }
func (fakeBus) CanRxPoll() (uint32, []byte, bool)             { return 0, nil, false }

func TestRCRRPDeferredRedispatch(t *testing.T) {
	phys := &fakeLink{sendStatus: Idle}
	fn := &fakeLink{sendStatus: Idle}
	now := uint32(1000)

	attempts := 0
	cfg := ServerConfig{
		PhysLink: phys, FuncLink: fn, Bus: fakeBus{},
		PhysRecvID: 0x7E0, FuncRecvID: 0x7DF, SendID: 0x7E8,
		P2MS: 20, P2StarMS: 5000, S3MS: 5000,
		Now: func() uint32 { return now },
		Callbacks: Callbacks{
			RequestDownload: func(status *ProtocolStatus, dfi byte, address, size uint32) (TransferCallback, TransferExitCallback, uint16, error) {
				onTransfer := func(status *ProtocolStatus, payload []byte) error {
					attempts++
					if attempts == 1 {
						return responsePending()
					}
					return nil
				}
				onExit := func(status *ProtocolStatus, out []byte, cap int) (int, error) {
					return 0, nil
				}
				return onTransfer, onExit, 8, nil
			},
		},
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)

	phys.push([]byte{0x34, 0x00, 0x11, 0x10, 0x04})
	now += 5
	s.Poll()
	require.Len(t, phys.sent, 1, "request download should answer immediately")

	phys.push([]byte{0x36, 0x01, 0x01})
	now += 25 // clear the p2 gate
	s.Poll()

	require.True(t, s.Status().RCRRP, "first TransferData attempt must latch RCRRP")
	require.Equal(t, []byte{0x7F, 0x36, byte(kRequestCorrectlyReceived_ResponsePending)}, phys.sent[len(phys.sent)-1])
	require.True(t, s.notReadyToReceive, "no new requests while RCRRP is outstanding")

	// the flow-control frame flushes; the next Poll must re-invoke the
	// handler and flush the final answer.
	now += 5
	s.Poll()

	require.False(t, s.Status().RCRRP)
	require.Equal(t, []byte{0x76, 0x01}, phys.sent[len(phys.sent)-1])
	require.Equal(t, 2, attempts)
}
