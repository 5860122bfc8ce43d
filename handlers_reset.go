package uds

/*
§4.3 0x11 ECUReset. Grounded on rolfl-modbus's serverHolding.go handler
shape; the notReadyToReceive/ecuResetScheduled latch is this engine's own
addition, since Modbus has no counterpart to a reset halting new request
pickup (§4.6 step 4).
*/

func (s *Server) handleECUReset(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.ECUReset == nil {
		return errServiceNotSupported(req.sid())
	}

	raw, err := req.readByte()
	if err != nil {
		return err
	}
	resetType := ResetType(raw & 0x3F)

	powerDownTime, err := s.cfg.Callbacks.ECUReset(&s.status, resetType)
	if err != nil {
		return err
	}

	s.notReadyToReceive = true
	s.ecuResetScheduled = true

	if err := resp.writeByte(byte(resetType)); err != nil {
		return err
	}
	if resetType == ResetEnableRapidPowerShutDown {
		return resp.writeByte(powerDownTime)
	}
	return nil
}
