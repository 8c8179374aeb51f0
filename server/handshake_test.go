package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rs/zerolog"

	"github.com/ghostfleet/bcserver/config"
	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/protocol"
	"github.com/ghostfleet/bcserver/wire"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	cfg := &config.Config{
		Port: 22101, MaxPlayers: 6, LogLevel: "info",
		Map: "Multi1", NoMasters: true,
	}
	ctx := NewContext(cfg, zerolog.Nop(), game.DefaultClasses())
	return ctx
}

func testAddr(n int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, byte(n)), Port: 30000 + n}
}

// buildChecksumResponse assembles a raw CHECKSUM_RESP payload, mirroring
// what a real client sends (the server never builds this message itself).
func buildChecksumResponse(round uint8, dirHash uint32, fileCount, subdirCount uint16) []byte {
	buf := wire.NewWriteBuffer(16)
	buf.WriteU8(protocol.OpChecksumResp)
	buf.WriteU8(round)
	buf.WriteU32(dirHash)
	buf.WriteU16(fileCount)
	buf.WriteU16(subdirCount)
	return buf.Bytes()
}

func TestHandleConnectAllocatesSlot(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)

	p := ctx.Peers.ByAddr(testAddr(1))
	require.NotNil(t, p)
	require.Equal(t, PeerChecksumming, p.State)
	require.False(t, p.Outbox.Empty())
}

func TestHandleConnectIgnoresDuplicateFromSameAddr(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	first := ctx.Peers.ByAddr(testAddr(1))
	ctx.handleConnect(testAddr(1), 2000)
	second := ctx.Peers.ByAddr(testAddr(1))
	require.Same(t, first, second)
}

func TestChecksumRoundsAdvanceThenEnterFinalRound(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))

	for round := uint8(0); round < checksumRounds; round++ {
		resp := buildChecksumResponse(round, 0, 0, 0)
		ctx.handleChecksumResponse(p, resp, 1000)
	}
	require.Equal(t, PeerChecksummingFinal, p.State)

	ctx.handleChecksumResponse(p, buildChecksumResponse(0xFF, 0, 0, 0), 1000)
	require.Equal(t, PeerLobby, p.State)
}

func TestChecksumMismatchBootsWithStrictManifest(t *testing.T) {
	ctx := testContext(t)
	strict := NewStrictManifest()
	strict.AddRound(0, 0xAAAA, 1, 1)
	ctx.Manifest = strict

	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))

	ctx.handleChecksumResponse(p, buildChecksumResponse(0, 0xBEEF, 1, 1), 1000)
	require.Equal(t, PeerEmpty, p.State, "peer should have been torn down after checksum boot")
}

func TestNewPlayerInGamePromotesFromLobbyOnly(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))

	ctx.handleNewPlayerInGame(p, 1000)
	require.Equal(t, PeerChecksumming, p.State, "must not promote before lobby")

	p.State = PeerLobby
	ctx.handleNewPlayerInGame(p, 1000)
	require.Equal(t, PeerInGame, p.State)
}

func TestEnterLobbyNotifiesMastersOfStatusChange(t *testing.T) {
	masterConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer masterConn.Close()

	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer serverConn.Close()

	cfg := &config.Config{
		Port: 22101, MaxPlayers: 6, LogLevel: "info", Map: "Multi1",
		Masters: []string{masterConn.LocalAddr().String()},
	}
	ctx := NewContext(cfg, zerolog.Nop(), game.DefaultClasses())
	ctx.Conn = serverConn
	require.NotNil(t, ctx.Masters)

	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	ctx.enterLobby(p, 1000)

	masterConn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 512)
	n, err := masterConn.Read(buf)
	require.NoError(t, err, "entering the lobby should trigger an out-of-band status-changed heartbeat")
	require.Contains(t, string(buf[:n]), "heartbeat")
}

func TestScheduleDisconnectReleasesSlotAndBroadcasts(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p1 := ctx.Peers.ByAddr(testAddr(1))
	p1.State = PeerInGame

	ctx.handleConnect(testAddr(2), 1000)
	p2 := ctx.Peers.ByAddr(testAddr(2))
	p2.State = PeerInGame
	p2.Outbox = wire.Outbox{}

	ctx.scheduleDisconnect(p1, 2000)
	require.Equal(t, PeerEmpty, p1.State)
	require.False(t, p2.Outbox.Empty(), "the remaining peer should have been notified")
}
