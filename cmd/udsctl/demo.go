package main

import (
	"fmt"

	uds "github.com/kestrel-diag/udsserver"
	"github.com/kestrel-diag/udsserver/udstest"
)

// scriptedRig builds a Server wired against the udstest fakes with a small
// canned ECU behind it, runs the same three-request script every
// subcommand shares, and returns the server and its physical link so the
// caller can print whatever it cares about.
func scriptedRig(polls int, verbose bool) (*uds.Server, *udstest.Link, error) {
	clock := udstest.NewClock(0)
	physLink := udstest.NewLink()
	funcLink := udstest.NewLink()
	bus := udstest.NewBus()

	dids := map[uint16][]byte{
		0xF190: []byte("1HGCM82633A004352"),
	}

	cfg := uds.ServerConfig{
		PhysLink:   physLink,
		FuncLink:   funcLink,
		Bus:        bus,
		PhysRecvID: 0x7E0,
		FuncRecvID: 0x7DF,
		SendID:     0x7E8,
		P2MS:       50,
		P2StarMS:   5000,
		S3MS:       5000,
		Now:        clock.Now,
		Callbacks: uds.Callbacks{
			SessionControl: func(status *uds.ProtocolStatus, requested uds.SessionType) error {
				return nil
			},
			ECUReset: func(status *uds.ProtocolStatus, requested uds.ResetType) (byte, error) {
				return 0, nil
			},
			RDBI: func(status *uds.ProtocolStatus, did uint16) ([]byte, error) {
				data, ok := dids[did]
				if !ok {
					return nil, fmt.Errorf("unknown DID 0x%04x", did)
				}
				return data, nil
			},
			WDBI: func(status *uds.ProtocolStatus, did uint16, data []byte) error {
				dids[did] = append([]byte(nil), data...)
				return nil
			},
		},
	}
	if verbose {
		cfg.Debug = func(format string, args ...interface{}) {
			fmt.Printf(format+"\n", args...)
		}
	}

	server, err := uds.NewServer(cfg)
	if err != nil {
		return nil, nil, err
	}

	// 0x10 0x03: enter extended diagnostic session.
	physLink.PushRequest([]byte{0x10, 0x03})
	// 0x22 0xF1 0x90: read the VIN DID.
	physLink.PushRequest([]byte{0x22, 0xF1, 0x90})
	// 0x3E 0x00: tester present, refreshes S3.
	physLink.PushRequest([]byte{0x3E, 0x00})

	for i := 0; i < polls; i++ {
		clock.Advance(10)
		server.Poll()
	}

	return server, physLink, nil
}

// DemoCommand drives a Server against the udstest in-memory fakes with a
// small scripted request sequence, printing every dispatched response.
type DemoCommand struct {
	Polls int `long:"polls" default:"20" description:"Number of Poll iterations to run"`
}

func (d *DemoCommand) Execute(args []string) error {
	server, physLink, err := scriptedRig(d.Polls, true)
	if err != nil {
		return err
	}

	for _, resp := range physLink.Sent() {
		fmt.Printf("response: % x\n", resp)
	}

	printDiagnostics(server)
	return nil
}

// DiagCommand runs the same scripted session but prints only the
// resulting diagnostics counters, mirroring mbcli's separate "diag"
// subcommand.
type DiagCommand struct {
	Polls int `long:"polls" default:"20" description:"Number of Poll iterations to run"`
}

func (d *DiagCommand) Execute(args []string) error {
	server, _, err := scriptedRig(d.Polls, false)
	if err != nil {
		return err
	}
	printDiagnostics(server)
	return nil
}

func printDiagnostics(server *uds.Server) {
	diag := server.Diagnostics()
	fmt.Printf("requests=%d negative=%d session_timeouts=%d active_transfer_session=%v\n",
		diag.RequestsTotal, diag.NegativeResponsesTotal, diag.SessionTimeouts, diag.ActiveTransferSession)
}
