package uds_test

import (
	"testing"

	uds "github.com/kestrel-diag/udsserver"
	"github.com/kestrel-diag/udsserver/udstest"
)

// testRig bundles a Server with the fakes backing it, grounded on
// ehrlich-b-go-ublk/marmos91-dittofs's pattern of a small test-local rig
// struct wiring real production types against in-memory fakes.
type testRig struct {
	t        *testing.T
	server   *uds.Server
	clock    *udstest.Clock
	physLink *udstest.Link
	funcLink *udstest.Link
	bus      *udstest.Bus
}

func newTestRig(t *testing.T, configure func(cfg *uds.ServerConfig)) *testRig {
	t.Helper()

	clock := udstest.NewClock(1000)
	physLink := udstest.NewLink()
	funcLink := udstest.NewLink()
	bus := udstest.NewBus()

	cfg := uds.ServerConfig{
		PhysLink:   physLink,
		FuncLink:   funcLink,
		Bus:        bus,
		PhysRecvID: 0x7E0,
		FuncRecvID: 0x7DF,
		SendID:     0x7E8,
		P2MS:       20,
		P2StarMS:   5000,
		S3MS:       1000,
		Now:        clock.Now,
	}
	if configure != nil {
		configure(&cfg)
	}

	server, err := uds.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	return &testRig{t: t, server: server, clock: clock, physLink: physLink, funcLink: funcLink, bus: bus}
}

// dispatchPhys pushes req on the physical link and polls until the server
// produces a response (or gives up after maxPolls), returning it.
func (r *testRig) dispatchPhys(req []byte, maxPolls int) []byte {
	r.t.Helper()
	before := len(r.physLink.Sent())
	r.physLink.PushRequest(req)
	for i := 0; i < maxPolls; i++ {
		r.clock.Advance(5)
		r.server.Poll()
		if len(r.physLink.Sent()) > before {
			return r.physLink.Sent()[len(r.physLink.Sent())-1]
		}
	}
	return nil
}
