package uds

/*
§4.5: the dispatcher applies ISO 14229 §7.5.5's standard pseudocode --
minimum-length checks, suppress-positive-response extraction, and the
functional-addressing negative-response suppression rule. Grounded on
rolfl-modbus's server.request (server.go), which performs the analogous
minimum-size check / handler invoke / remaining-bytes check sequence, but
adds the two suppression passes ISO 14229 requires that Modbus has no
counterpart for.
*/

// suppressedOnFunctional is the response-code set from §4.5 step 3: a
// functionally-addressed request answering with one of these codes must be
// suppressed entirely, since a broadcast request that doesn't apply to
// this ECU should produce silence, not noise on the bus.
var suppressedOnFunctional = map[ResponseCode]bool{
	kServiceNotSupported:                      true,
	kSubFunctionNotSupported:                  true,
	kServiceNotSupportedInActiveSession:       true,
	kSubFunctionNotSupportedInActiveSession:   true,
	kRequestOutOfRange:                        true,
}

func writeNegative(resp *responseContext, sid byte, code ResponseCode) {
	resp.suppress()
	// best effort: a 3-byte negative response never overflows a buffer
	// that could hold any positive response for the same service.
	_ = resp.writeByte(0x7F)
	_ = resp.writeByte(sid)
	_ = resp.writeByte(byte(code))
}

// dispatch runs one request through the registry and suppression rules,
// filling resp and returning the response code that was produced (which
// may differ from what ended up in resp, since a suppressed response still
// reports its underlying code to the caller for RCRRP bookkeeping).
func (s *Server) dispatch(reqBuf []byte, addressing AddressingScheme, resp *responseContext) ResponseCode {
	resp.suppress()

	// §9 open question: the reference dispatcher has no guard against
	// re-suppressing the eventual answer to a request that already earned a
	// 0x78 "response pending" on an earlier poll. We resolve it as spec.md
	// directs -- by consulting status.RCRRP, captured here before the
	// handler runs (and potentially changes it again).
	alreadyPending := s.status.RCRRP

	sid := reqBuf[0]

	entry, ok := s.registry[sid]
	if !ok {
		code := kServiceNotSupported
		writeNegative(resp, sid, code)
		return s.finishDispatch(addressing, false, alreadyPending, code, resp)
	}

	suppressPositive := false
	if entry.subFunctioned {
		if len(reqBuf) < 2 {
			code := kIncorrectMessageLengthOrInvalidFormat
			writeNegative(resp, sid, code)
			return s.finishDispatch(addressing, false, alreadyPending, code, resp)
		}
		suppressPositive = reqBuf[1]&0x80 != 0
	}

	if len(reqBuf) < entry.minLen {
		code := kIncorrectMessageLengthOrInvalidFormat
		writeNegative(resp, sid, code)
		return s.finishDispatch(addressing, suppressPositive, alreadyPending, code, resp)
	}

	req := newRequestContext(reqBuf, addressing)
	req.cursor = 1

	if err := resp.writeByte(sid | 0x40); err != nil {
		code := asNRC(err)
		writeNegative(resp, sid, code)
		return s.finishDispatch(addressing, suppressPositive, alreadyPending, code, resp)
	}

	err := entry.handler(&req, resp)
	if err != nil {
		code := asNRC(err)
		writeNegative(resp, sid, code)
		return s.finishDispatch(addressing, suppressPositive, alreadyPending, code, resp)
	}

	return s.finishDispatch(addressing, suppressPositive, alreadyPending, kPositiveResponse, resp)
}

// finishDispatch applies §4.5 step 3's suppression rules uniformly across
// every exit path of dispatch. alreadyPending is true when a 0x78 response
// was already sent for this same buffered request on an earlier poll; the
// suppress-positive-bit rule does not re-engage in that case, since the
// client has already been told a final answer is coming.
func (s *Server) finishDispatch(addressing AddressingScheme, suppressPositive, alreadyPending bool, code ResponseCode, resp *responseContext) ResponseCode {
	switch {
	case addressing == Functional && suppressedOnFunctional[code]:
		resp.suppress()
	case suppressPositive && code == kPositiveResponse && !alreadyPending:
		resp.suppress()
	}
	return code
}
