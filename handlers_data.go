package uds

/*
§4.3 0x22 ReadDataByIdentifier and 0x2E WriteDataByIdentifier. Grounded on
rolfl-modbus's serverHolding.go x03/x06 handlers (word-at-a-time register
access through a user-supplied store), generalized from Modbus's
fixed-width registers to UDS's variable-length DID payloads.
*/

func (s *Server) handleReadDataByIdentifier(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.RDBI == nil {
		return errServiceNotSupported(req.sid())
	}

	n := req.remainingLen()
	if n == 0 || n%2 != 0 {
		return errIncorrectLength("read data by identifier body must be a nonzero multiple of two bytes, got %d", n)
	}

	for req.remainingLen() > 0 {
		did, err := req.readWord()
		if err != nil {
			return err
		}

		data, err := s.cfg.Callbacks.RDBI(&s.status, did)
		if err != nil {
			return err
		}

		if resp.remainingCapacity() < 2+len(data) {
			return errResponseTooLong("did 0x%04x: %d-byte payload does not fit in %d remaining response byte(s)", did, len(data), resp.remainingCapacity())
		}
		if err := resp.writeWord(did); err != nil {
			return err
		}
		if err := resp.writeBytes(data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleWriteDataByIdentifier(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.WDBI == nil {
		return errServiceNotSupported(req.sid())
	}

	did, err := req.readWord()
	if err != nil {
		return err
	}
	data := req.remaining()

	if err := s.cfg.Callbacks.WDBI(&s.status, did, data); err != nil {
		return err
	}

	return resp.writeWord(did)
}
