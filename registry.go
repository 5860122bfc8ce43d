package uds

/*
§4.1: mapping from SID to handler, and the two-way classification of
sub-functioned vs. non-sub-functioned SIDs required by ISO 14229 §7.5.5.
Grounded on rolfl-modbus's server.go addRequestHandler / rhandlers map.
The handler map is still built per Server at construction time
(buildRegistry, called from NewServer), but its contents are a fixed list
rather than pluggable, since every SID this engine supports is fixed by the
standard rather than by per-deployment configuration.
*/

// serviceHandler parses req, invokes the relevant user callback, and -- on
// success -- appends the service-specific payload to resp (the response
// SID byte has already been written by the dispatcher). Returning a
// *NegativeResponse aborts the request with that NRC; any other error is
// treated as kGeneralProgrammingFailure. Each registered handler is a bound
// method value on the owning *Server, mirroring rolfl-modbus's rhandlers
// map of bound resource-handler methods.
type serviceHandler func(req *requestContext, resp *responseContext) error

type serviceEntry struct {
	sid           byte
	subFunctioned bool
	minLen        int // minimum total request length, SID included
	handler       serviceHandler
}

// subFunctionedSIDs per §4.1: the byte after the SID is a sub-function
// whose high bit is the suppress-positive-response flag.
var subFunctionedSIDs = map[byte]bool{
	0x10: true, 0x11: true, 0x19: true, 0x27: true, 0x28: true,
	0x31: true, 0x3E: true, 0x83: true, 0x84: true, 0x85: true, 0x86: true,
}

func (s *Server) registerHandler(sid byte, minLen int, handler serviceHandler) {
	s.registry[sid] = serviceEntry{
		sid:           sid,
		subFunctioned: subFunctionedSIDs[sid],
		minLen:        minLen,
		handler:       handler,
	}
}

// buildRegistry wires every supported SID in to s.registry. Absent SIDs
// fall through to the dispatcher's "service not supported" branch.
func (s *Server) buildRegistry() {
	s.registry = make(map[byte]serviceEntry)

	s.registerHandler(0x10, 2, s.handleDiagnosticSessionControl)
	s.registerHandler(0x11, 2, s.handleECUReset)
	s.registerHandler(0x22, 3, s.handleReadDataByIdentifier)
	s.registerHandler(0x27, 2, s.handleSecurityAccess)
	s.registerHandler(0x28, 3, s.handleCommunicationControl)
	s.registerHandler(0x2E, 3, s.handleWriteDataByIdentifier)
	s.registerHandler(0x31, 4, s.handleRoutineControl)
	s.registerHandler(0x34, 5, s.handleRequestDownload)
	s.registerHandler(0x36, 2, s.handleTransferData)
	s.registerHandler(0x37, 1, s.handleRequestTransferExit)
	s.registerHandler(0x3E, 2, s.handleTesterPresent)
	s.registerHandler(0x85, 2, s.handleControlDTCSetting)
}
