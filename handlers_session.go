package uds

/*
§4.3 0x10 DiagnosticSessionControl and 0x3E TesterPresent: the two
services that manage the diagnostic session's lifetime. Grounded on
rolfl-modbus's serverHolding.go handler shape (cursor in, builder out,
single user hook in the middle).
*/

func (s *Server) handleDiagnosticSessionControl(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.SessionControl == nil {
		return errServiceNotSupported(req.sid())
	}

	raw, err := req.readByte()
	if err != nil {
		return err
	}
	requested := SessionType(raw & 0x4F)

	if err := s.cfg.Callbacks.SessionControl(&s.status, requested); err != nil {
		return err
	}

	if requested != SessionDefault {
		s.s3Timeout = s.cfg.Now() + s.cfg.S3MS
	}
	s.status.SessionType = requested

	if err := resp.writeWord(uint16(s.cfg.P2MS)); err != nil {
		return err
	}
	return resp.writeWord(uint16(s.cfg.P2StarMS / 10))
}

func (s *Server) handleTesterPresent(req *requestContext, resp *responseContext) error {
	raw, err := req.readByte()
	if err != nil {
		return err
	}

	s.s3Timeout = s.cfg.Now() + s.cfg.S3MS

	return resp.writeByte(raw & 0x3F)
}
