package udstest

// Bus is a fake uds.Bus: CanTx just records frames, CanRxPoll drains a
// caller-fed queue. Tests that exercise Server.Poll's bus-pump step push
// frames in with PushFrame; tests that only care about dispatch logic can
// ignore Bus and feed a Link directly via Link.PushRequest.
type Bus struct {
	rx []busFrame
	tx []busFrame
}

type busFrame struct {
	arbID uint32
	data  []byte
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// PushFrame queues one frame to be returned by a future CanRxPoll.
func (b *Bus) PushFrame(arbID uint32, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.rx = append(b.rx, busFrame{arbID, cp})
}

// Transmitted returns every frame handed to CanTx, in order.
func (b *Bus) Transmitted() []struct {
	ArbID uint32
	Data  []byte
} {
	out := make([]struct {
		ArbID uint32
		Data  []byte
	}, len(b.tx))
	for i, f := range b.tx {
		out[i] = struct {
			ArbID uint32
			Data  []byte
		}{f.arbID, f.data}
	}
	return out
}

func (b *Bus) CanTx(arbID uint32, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.tx = append(b.tx, busFrame{arbID, cp})
	return nil
}

func (b *Bus) CanRxPoll() (uint32, []byte, bool) {
	if len(b.rx) == 0 {
		return 0, nil, false
	}
	f := b.rx[0]
	b.rx = b.rx[1:]
	return f.arbID, f.data, true
}
