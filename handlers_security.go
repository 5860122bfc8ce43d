package uds

/*
§4.3 0x27 SecurityAccess: odd sub-functions request a seed, even
sub-functions submit a key for the level below them. Grounded on
rolfl-modbus's serverHolding.go handler shape; the odd/even split and the
two-callback seed/key contract have no Modbus counterpart and come
straight from spec.md.
*/

func (s *Server) handleSecurityAccess(req *requestContext, resp *responseContext) error {
	raw, err := req.readByte()
	if err != nil {
		return err
	}
	// §4.5 step 2: the dispatcher already split off request[1]&0x80 as the
	// suppress-positive-response flag; the handler must ignore it here.
	subFn := raw & 0x7F

	if subFn == 0x00 || subFn == 0x7F {
		return errSubFunctionNotSupported(req.sid(), subFn)
	}

	if subFn%2 == 1 {
		return s.requestSeed(subFn, req, resp)
	}
	return s.sendKey(subFn, req, resp)
}

func (s *Server) requestSeed(subFn byte, req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.GenerateSeed == nil {
		return errServiceNotSupported(req.sid())
	}

	level := subFn
	in := req.remaining()

	seed, err := s.cfg.Callbacks.GenerateSeed(&s.status, level, in)
	if err != nil {
		return err
	}
	if len(seed) == 0 {
		return errGeneralProgrammingFailure("security access level 0x%02x: generateSeed returned an empty seed", level)
	}
	if len(seed) > resp.remainingCapacity()-1 {
		return errGeneralProgrammingFailure("security access level 0x%02x: %d-byte seed does not fit in the response buffer", level, len(seed))
	}

	if err := resp.writeByte(subFn); err != nil {
		return err
	}
	return resp.writeBytes(seed)
}

func (s *Server) sendKey(subFn byte, req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.ValidateKey == nil {
		return errServiceNotSupported(req.sid())
	}

	level := subFn - 1
	key := req.remaining()

	if err := s.cfg.Callbacks.ValidateKey(&s.status, level, key); err != nil {
		return err
	}
	s.status.SecurityLevel = level

	return resp.writeByte(subFn)
}
