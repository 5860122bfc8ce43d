package udstest

import uds "github.com/kestrel-diag/udsserver"

// Link is a fake uds.Link backed by plain in-memory queues: OnFrame
// enqueues one whole logical UDS message (this fake skips segmentation
// entirely -- tests push whole messages), and Send records whatever the
// server answered with for later assertion.
type Link struct {
	inbound [][]byte
	sent    [][]byte

	sendStatus uds.SendStatus
	// sendDelay, when non-zero, is how many Poll calls SendStatus stays
	// InProgress after a Send before reporting Idle again -- lets tests
	// exercise the §4.6 "deferred RCRRP" path deterministically.
	sendDelay    int
	sendCountdown int
}

// NewLink returns an idle Link with no buffered frames.
func NewLink() *Link {
	return &Link{sendStatus: uds.Idle}
}

// SetSendDelay configures how many Poll calls a queued Send stays
// InProgress before the link reports Idle.
func (l *Link) SetSendDelay(polls int) {
	l.sendDelay = polls
}

// PushRequest enqueues one whole UDS request message as if it had just
// arrived off the bus.
func (l *Link) PushRequest(msg []byte) {
	cp := make([]byte, len(msg))
	copy(cp, msg)
	l.inbound = append(l.inbound, cp)
}

// Sent returns every message this link has been asked to Send, in order.
func (l *Link) Sent() [][]byte {
	return l.sent
}

// LastSent returns the most recent Send payload, or nil if none yet.
func (l *Link) LastSent() []byte {
	if len(l.sent) == 0 {
		return nil
	}
	return l.sent[len(l.sent)-1]
}

func (l *Link) OnFrame(data []byte) {
	l.PushRequest(data)
}

func (l *Link) Poll() {
	if l.sendCountdown > 0 {
		l.sendCountdown--
		if l.sendCountdown == 0 {
			l.sendStatus = uds.Idle
		}
	}
}

func (l *Link) Send(msg []byte) error {
	cp := make([]byte, len(msg))
	copy(cp, msg)
	l.sent = append(l.sent, cp)

	if l.sendDelay > 0 {
		l.sendStatus = uds.InProgress
		l.sendCountdown = l.sendDelay
	} else {
		l.sendStatus = uds.Idle
	}
	return nil
}

func (l *Link) Receive(out []byte) (int, uds.ReceiveStatus) {
	if len(l.inbound) == 0 {
		return 0, uds.ReceiveNoData
	}
	msg := l.inbound[0]
	l.inbound = l.inbound[1:]
	n := copy(out, msg)
	return n, uds.ReceiveOk
}

func (l *Link) SendStatus() uds.SendStatus {
	return l.sendStatus
}
