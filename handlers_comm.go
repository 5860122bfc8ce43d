package uds

/*
§4.3 0x28 CommunicationControl and 0x85 ControlDTCSetting: both straight
echo-style services with a single optional user hook. Grounded on
rolfl-modbus's serverHolding.go handler shape.
*/

func (s *Server) handleCommunicationControl(req *requestContext, resp *responseContext) error {
	if s.cfg.Callbacks.CommunicationControl == nil {
		return errServiceNotSupported(req.sid())
	}

	raw, err := req.readByte()
	if err != nil {
		return err
	}
	controlType := raw & 0x7F

	communicationType, err := req.readByte()
	if err != nil {
		return err
	}

	if err := s.cfg.Callbacks.CommunicationControl(&s.status, controlType, communicationType); err != nil {
		return err
	}

	return resp.writeByte(controlType)
}

func (s *Server) handleControlDTCSetting(req *requestContext, resp *responseContext) error {
	raw, err := req.readByte()
	if err != nil {
		return err
	}
	dtcSettingType := raw & 0x3F

	if s.cfg.Callbacks.ControlDTCSetting != nil {
		if err := s.cfg.Callbacks.ControlDTCSetting(&s.status, dtcSettingType); err != nil {
			return err
		}
	}

	return resp.writeByte(dtcSettingType)
}
