package uds

/*
Server instance and the cooperative §4.6 poll loop. Grounded on
rolfl-modbus's server.go (NewServer/addRequestHandler/request) for the
registry-and-dispatch shape, and on modbus.go's demuxRX/handleServer for
the "pick a message up, dispatch it, hand the answer back to the
transport" flow -- collapsed here from the teacher's goroutine-per-message
model to the single poll-driven call §5 mandates.
*/

import (
	"fmt"

	"github.com/rs/xid"
)

const defaultTransportMTU = 4095

// ServerConfig is every parameter recognized at initialization (§6.6).
// NewServer rejects a config without PhysLink, FuncLink, Bus or Now, or with
// a zero P2MS or S3MS; SessionTimeout, Debug, TransportMTU, Callbacks and
// Metrics are optional.
type ServerConfig struct {
	PhysLink Link
	FuncLink Link
	Bus      Bus

	PhysRecvID uint32
	FuncRecvID uint32
	SendID     uint32

	P2MS     uint32
	P2StarMS uint32
	S3MS     uint32

	Now ClockFunc

	SessionTimeout SessionTimeoutCallback

	// Debug, if non-nil, is called at the same points rolfl-modbus's
	// fmt.Printf call sites log: frame dropped, request dispatched, request
	// failed.
	Debug func(format string, args ...interface{})

	// TransportMTU bounds both the scratch request/response buffers and the
	// clamp applied to a 0x34 handler's proposed block length. Defaults to
	// 4095 (§4.3's "clamps ... to the transport MTU (4095 by default)").
	TransportMTU int

	Callbacks Callbacks

	// Metrics, if non-nil, receives Prometheus counters for every
	// dispatched request (see metrics.go).
	Metrics *MetricsCollector
}

// Server owns the configuration, the two transport links, protocol status,
// timers, callback pointers, and at most one active transfer session (§3).
type Server struct {
	cfg      ServerConfig
	registry map[byte]serviceEntry

	status ProtocolStatus

	p2Timer           uint32
	s3Timeout         uint32
	notReadyToReceive bool
	ecuResetScheduled bool

	session *transferSession

	// pendingReqLen/pendingReq hold the physical-link request that earned a
	// 0x78 "response pending" and is awaiting re-dispatch once the send
	// buffer goes idle (§4.6 step 3). Always Physical addressing, per
	// spec.md ("the physical link reports its send buffer idle").
	pendingReq    []byte
	pendingReqLen int

	reqScratch  []byte
	respScratch []byte

	diag serverDiagnostics
}

func (s *Server) debugf(format string, args ...interface{}) {
	if s.cfg.Debug != nil {
		s.cfg.Debug(format, args...)
	}
}

// NewServer validates the configuration and builds a ready-to-Poll server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.PhysLink == nil || cfg.FuncLink == nil || cfg.Bus == nil || cfg.Now == nil {
		return nil, fmt.Errorf("uds: PhysLink, FuncLink, Bus and Now are all mandatory")
	}
	if cfg.P2MS == 0 || cfg.S3MS == 0 {
		return nil, fmt.Errorf("uds: P2MS and S3MS must be non-zero")
	}
	mtu := cfg.TransportMTU
	if mtu == 0 {
		mtu = defaultTransportMTU
	}

	s := &Server{
		cfg:         cfg,
		status:      newProtocolStatus(),
		reqScratch:  make([]byte, mtu+4),
		respScratch: make([]byte, mtu+4),
		pendingReq:  make([]byte, mtu+4),
	}
	s.cfg.TransportMTU = mtu
	s.buildRegistry()

	now := cfg.Now()
	// "Initialized to now - p2_ms so the first request is accepted
	// immediately" (§3).
	s.p2Timer = now - cfg.P2MS
	s.s3Timeout = now + cfg.S3MS

	return s, nil
}

// Status returns the current protocol status. Safe to read between Poll
// calls; must not be mutated by callers.
func (s *Server) Status() *ProtocolStatus {
	return &s.status
}

// Diagnostics returns a snapshot of the server's counters (see
// SPEC_FULL.md "Supplemented Features", mirroring rolfl-modbus's
// server.Diagnostics() ServerDiagnostics).
func (s *Server) Diagnostics() ServerDiagnostics {
	return s.diag.snapshot(s.session != nil)
}

// Poll drives one iteration of the §4.6 server loop: bus pump, S3 timeout
// check, deferred RCRRP completion, then (gated on notReadyToReceive and
// p2) at most one new request dispatch, physical link preferred over
// functional.
func (s *Server) Poll() {
	now := s.cfg.Now()

	s.pumpBus(now)

	if s.status.SessionType != SessionDefault && TimeAfter(now, s.s3Timeout) {
		if s.cfg.SessionTimeout != nil {
			s.cfg.SessionTimeout()
		}
		s.status.SessionType = SessionDefault
		s.diag.sessionTimeouts++
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.observeSessionTimeout()
		}
	}

	if s.status.RCRRP && s.cfg.PhysLink.SendStatus() == Idle {
		s.redispatchPending()
	}

	if s.notReadyToReceive {
		return
	}
	if notAfter(now, s.p2Timer) {
		return
	}

	if s.tryReceiveAndDispatch(s.cfg.PhysLink, Physical, now) {
		return
	}
	s.tryReceiveAndDispatch(s.cfg.FuncLink, Functional, now)
}

// pumpBus implements §4.6 step 1: route one arrived frame to whichever
// link's receive ID it matches, then tick both links for their own
// segmentation/timer bookkeeping.
func (s *Server) pumpBus(now uint32) {
	if arbID, data, ok := s.cfg.Bus.CanRxPoll(); ok {
		switch arbID {
		case s.cfg.PhysRecvID:
			s.cfg.PhysLink.OnFrame(data)
		case s.cfg.FuncRecvID:
			s.cfg.FuncLink.OnFrame(data)
		default:
			s.debugf("uds: dropping frame from unknown arbitration id 0x%x", arbID)
		}
	}
	s.cfg.PhysLink.Poll()
	s.cfg.FuncLink.Poll()
}

func (s *Server) tryReceiveAndDispatch(link Link, addressing AddressingScheme, now uint32) bool {
	n, status := link.Receive(s.reqScratch)
	if status != ReceiveOk || n == 0 {
		return false
	}
	s.handleRequest(link, addressing, s.reqScratch[:n])
	s.p2Timer = now + s.cfg.P2MS
	return true
}

func (s *Server) handleRequest(link Link, addressing AddressingScheme, reqBuf []byte) {
	id := xid.New().String()
	s.debugf("uds[%s]: dispatching sid=0x%02x addressing=%v len=%d", id, reqBuf[0], addressing, len(reqBuf))

	resp := newResponseContext(s.respScratch)
	code := s.dispatch(reqBuf, addressing, &resp)
	s.diag.requests++
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.observeRequest(reqBuf[0], code)
	}

	if code != kPositiveResponse {
		s.diag.negativeResponses++
	}

	if code == kRequestCorrectlyReceived_ResponsePending {
		s.status.RCRRP = true
		s.notReadyToReceive = true
		s.pendingReqLen = copy(s.pendingReq, reqBuf)
		s.debugf("uds[%s]: response pending, latching RCRRP", id)
	} else if code != kPositiveResponse {
		s.debugf("uds[%s]: sid=0x%02x failed nrc=0x%02x", id, reqBuf[0], code)
	}

	if len(resp.bytes()) > 0 {
		if err := link.Send(resp.bytes()); err != nil {
			s.debugf("uds[%s]: transport send failed: %v", id, err)
		}
	}
}

// redispatchPending implements §4.6 step 3: once the physical link's send
// buffer has flushed the pending-response frame, re-invoke the dispatcher
// for the still-buffered request so a long-running handler can produce its
// final answer.
func (s *Server) redispatchPending() {
	reqBuf := s.pendingReq[:s.pendingReqLen]
	resp := newResponseContext(s.respScratch)
	code := s.dispatch(reqBuf, Physical, &resp)

	if code == kRequestCorrectlyReceived_ResponsePending {
		// Still outstanding; nothing to flush yet, keep waiting.
		if len(resp.bytes()) > 0 {
			_ = s.cfg.PhysLink.Send(resp.bytes())
		}
		return
	}

	s.status.RCRRP = false
	s.notReadyToReceive = s.ecuResetScheduled

	if len(resp.bytes()) > 0 {
		if err := s.cfg.PhysLink.Send(resp.bytes()); err != nil {
			s.debugf("uds: transport send failed for deferred response: %v", err)
		}
	}
}
