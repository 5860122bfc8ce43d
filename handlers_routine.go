package uds

/*
§4.3 0x31 RoutineControl. Grounded on rolfl-modbus's serverHolding.go
handler shape; the three-way Start/Stop/RequestResults sub-function
enumeration and the reference implementation's quirky handling of any
other sub-function value come from spec.md's §9 open-question resolution
("keep reference behavior" -- an unrecognized routineControlType reports
a length error, not a sub-function error).
*/

func (s *Server) handleRoutineControl(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.RoutineControl == nil {
		return errServiceNotSupported(req.sid())
	}

	raw, err := req.readByte()
	if err != nil {
		return err
	}
	routineControlType := raw & 0x7F

	switch routineControlType {
	case 0x01, 0x02, 0x03:
	default:
		return errIncorrectLength("routine control type 0x%02x is not Start/Stop/RequestResults", routineControlType)
	}

	routineID, err := req.readWord()
	if err != nil {
		return err
	}
	optionRecord := req.remaining()

	statusRecord, err := s.cfg.Callbacks.RoutineControl(&s.status, routineControlType, routineID, optionRecord)
	if err != nil {
		return err
	}

	if err := resp.writeByte(routineControlType); err != nil {
		return err
	}
	if err := resp.writeWord(routineID); err != nil {
		return err
	}
	return resp.writeBytes(statusRecord)
}
