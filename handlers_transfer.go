package uds

/*
§4.3/§4.4 0x34 RequestDownload, 0x36 TransferData, 0x37
RequestTransferExit: the firmware-download state machine built on top of
transferSession (session.go). Grounded on rolfl-modbus's serverHolding.go
handler shape for the per-request parse/callback/encode structure; the
session lifecycle itself has no Modbus counterpart and follows spec.md
§4.4 directly.
*/

func readBigEndianUint32(req *requestContext, n int) (uint32, error) {
	b, err := req.readBytes(n)
	if err != nil {
		return 0, err
	}
	var v uint32
	for _, by := range b {
		v = v<<8 | uint32(by)
	}
	return v, nil
}

func (s *Server) handleRequestDownload(req *requestContext, resp *responseContext) error {
	if s.session != nil {
		return errConditionsNotCorrect("a transfer session is already active")
	}
	if s.cfg.Callbacks.RequestDownload == nil {
		return errServiceNotSupported(req.sid())
	}

	dataFormatIdentifier, err := req.readByte()
	if err != nil {
		return err
	}
	addressAndLengthFormat, err := req.readByte()
	if err != nil {
		return err
	}
	memorySizeLength := int(addressAndLengthFormat >> 4)
	memoryAddressLength := int(addressAndLengthFormat & 0x0F)
	if memoryAddressLength < 1 || memoryAddressLength > 4 || memorySizeLength < 1 || memorySizeLength > 4 {
		return errRequestOutOfRange("address and length format 0x%02x has an out-of-range nibble", addressAndLengthFormat)
	}

	// §9 open question: memoryAddress is carried as an opaque token and
	// handed to the callback uninterpreted; this engine never dereferences
	// it.
	memoryAddress, err := readBigEndianUint32(req, memoryAddressLength)
	if err != nil {
		return err
	}
	memorySize, err := readBigEndianUint32(req, memorySizeLength)
	if err != nil {
		return err
	}

	onTransfer, onExit, maxBlockLength, err := s.cfg.Callbacks.RequestDownload(&s.status, dataFormatIdentifier, memoryAddress, memorySize)
	if err != nil {
		return err
	}
	if onTransfer == nil || onExit == nil {
		return errGeneralProgrammingFailure("request download callback reported success without both onTransfer and onExit")
	}
	if maxBlockLength < 3 {
		return errGeneralProgrammingFailure("request download callback proposed a %d-byte block length, below the 3-byte floor", maxBlockLength)
	}
	if int(maxBlockLength) > s.cfg.TransportMTU {
		maxBlockLength = uint16(s.cfg.TransportMTU)
	}

	s.session = newTransferSession(memorySize, onTransfer, onExit)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.observeTransferSessionOpened()
	}

	if err := resp.writeByte(0x20); err != nil {
		return err
	}
	return resp.writeWord(maxBlockLength)
}

func (s *Server) handleTransferData(req *requestContext, resp *responseContext) error {
	if s.session == nil {
		return errUploadDownloadNotAccepted("transfer data requires an active transfer session")
	}

	counter, err := req.readByte()
	if err != nil {
		return err
	}

	// While RCRRP is outstanding the client is expected to retransmit the
	// same block; skip the sequence check and do not re-advance (§4.4).
	if !s.status.RCRRP {
		if counter != s.session.blockSequenceCounter {
			expected := s.session.blockSequenceCounter
			s.session = nil
			return errRequestSequenceError("expected block sequence counter 0x%02x, got 0x%02x", expected, counter)
		}
		s.session.advance()
	}

	payload := req.remaining()
	if s.session.numBytesTransferred+uint32(len(payload)) > s.session.requestedTransferSize {
		requestedTransferSize := s.session.requestedTransferSize
		s.session = nil
		return errTransferDataSuspended("transfer would exceed the requested %d-byte transfer size", requestedTransferSize)
	}

	if err := s.session.onTransfer(&s.status, payload); err != nil {
		if nr, ok := err.(*NegativeResponse); ok && nr.code == kRequestCorrectlyReceived_ResponsePending {
			return err
		}
		s.session = nil
		return err
	}

	s.session.numBytesTransferred += uint32(len(payload))
	return resp.writeByte(counter)
}

func (s *Server) handleRequestTransferExit(req *requestContext, resp *responseContext) error {
	if s.session == nil {
		return errUploadDownloadNotAccepted("request transfer exit requires an active transfer session")
	}

	out := resp.buf[resp.length:resp.bufferSize]
	written, err := s.session.onExit(&s.status, out, len(out))
	s.session = nil
	if err != nil {
		return err
	}
	if written < 0 || written > len(out) {
		return errGeneralProgrammingFailure("transfer exit callback reported %d bytes written in to a %d-byte buffer", written, len(out))
	}

	resp.length += written
	return nil
}
