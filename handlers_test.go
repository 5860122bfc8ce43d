package uds_test

import (
	"fmt"
	"testing"

	uds "github.com/kestrel-diag/udsserver"
	"github.com/stretchr/testify/require"
)

func TestReadDataByIdentifier(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.RDBI = func(status *uds.ProtocolStatus, did uint16) ([]byte, error) {
			if did != 0xF190 {
				return nil, fmt.Errorf("unknown did 0x%04x", did)
			}
			return []byte{0xAA, 0xBB}, nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x22, 0xF1, 0x90}, 10)
	require.Equal(t, []byte{0x62, 0xF1, 0x90, 0xAA, 0xBB}, resp)
}

func TestReadDataByIdentifierRejectsOddLength(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.RDBI = func(status *uds.ProtocolStatus, did uint16) ([]byte, error) {
			return []byte{0x01}, nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x22, 0xF1, 0x90, 0x01}, 10)
	require.Equal(t, []byte{0x7F, 0x22, byte(0x13)}, resp)
}

func TestWriteDataByIdentifier(t *testing.T) {
	var gotDID uint16
	var gotData []byte
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.WDBI = func(status *uds.ProtocolStatus, did uint16, data []byte) error {
			gotDID = did
			gotData = append([]byte(nil), data...)
			return nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x2E, 0xF1, 0x90, 0x01, 0x02, 0x03}, 10)
	require.Equal(t, []byte{0x6E, 0xF1, 0x90}, resp)
	require.Equal(t, uint16(0xF190), gotDID)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, gotData)
}

func TestSecurityAccessRequestSeedThenSendKey(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.GenerateSeed = func(status *uds.ProtocolStatus, level uint8, in []byte) ([]byte, error) {
			require.Equal(t, uint8(0x01), level)
			return []byte{0x12, 0x34}, nil
		}
		cfg.Callbacks.ValidateKey = func(status *uds.ProtocolStatus, level uint8, key []byte) error {
			require.Equal(t, uint8(0x01), level)
			require.Equal(t, []byte{0x56, 0x78}, key)
			return nil
		}
	})

	seedResp := rig.dispatchPhys([]byte{0x27, 0x01}, 10)
	require.Equal(t, []byte{0x67, 0x01, 0x12, 0x34}, seedResp)

	keyResp := rig.dispatchPhys([]byte{0x27, 0x02, 0x56, 0x78}, 10)
	require.Equal(t, []byte{0x67, 0x02}, keyResp)
	require.Equal(t, uint8(0x01), rig.server.Status().SecurityLevel)
}

func TestSecurityAccessReservedSubFunction(t *testing.T) {
	rig := newTestRig(t, nil)

	resp := rig.dispatchPhys([]byte{0x27, 0x7F}, 10)
	require.Equal(t, []byte{0x7F, 0x27, byte(0x12)}, resp)
}

func TestTesterPresentRefreshesS3(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.SessionControl = func(status *uds.ProtocolStatus, requested uds.SessionType) error {
			return nil
		}
	})

	rig.dispatchPhys([]byte{0x10, 0x03}, 10)

	// advance to just under S3 and keep poking tester-present.
	for i := 0; i < 3; i++ {
		rig.clock.Advance(600)
		resp := rig.dispatchPhys([]byte{0x3E, 0x00}, 10)
		require.Equal(t, []byte{0x7E, 0x00}, resp)
	}
	require.Equal(t, uds.SessionExtended, rig.server.Status().SessionType, "tester present must keep postponing the S3 timeout")
}

func TestECUResetLatchesNotReadyToReceive(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.ECUReset = func(status *uds.ProtocolStatus, requested uds.ResetType) (byte, error) {
			require.Equal(t, uds.ResetHard, requested)
			return 0, nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x11, 0x01}, 10)
	require.Equal(t, []byte{0x51, 0x01}, resp)

	// a subsequent request must not be picked up at all.
	before := len(rig.physLink.Sent())
	rig.physLink.PushRequest([]byte{0x3E, 0x00})
	for i := 0; i < 10; i++ {
		rig.clock.Advance(5)
		rig.server.Poll()
	}
	require.Equal(t, before, len(rig.physLink.Sent()), "no requests should be dispatched once a reset is scheduled")
}

func TestControlDTCSettingEchoes(t *testing.T) {
	rig := newTestRig(t, nil)

	resp := rig.dispatchPhys([]byte{0x85, 0x02}, 10)
	require.Equal(t, []byte{0xC5, 0x02}, resp)
}

func TestRoutineControlRejectsUnknownSubFunction(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.RoutineControl = func(status *uds.ProtocolStatus, routineControlType byte, routineID uint16, optionRecord []byte) ([]byte, error) {
			return nil, nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x31, 0x09, 0x12, 0x34}, 10)
	require.Equal(t, []byte{0x7F, 0x31, byte(0x13)}, resp)
}

func TestRoutineControlStart(t *testing.T) {
	rig := newTestRig(t, func(cfg *uds.ServerConfig) {
		cfg.Callbacks.RoutineControl = func(status *uds.ProtocolStatus, routineControlType byte, routineID uint16, optionRecord []byte) ([]byte, error) {
			require.Equal(t, byte(0x01), routineControlType)
			require.Equal(t, uint16(0x1234), routineID)
			return []byte{0x01}, nil
		}
	})

	resp := rig.dispatchPhys([]byte{0x31, 0x01, 0x12, 0x34}, 10)
	require.Equal(t, []byte{0x71, 0x01, 0x12, 0x34, 0x01}, resp)
}
