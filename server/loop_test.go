package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/wire"
)

func TestTickShipsAdvancesWeaponChargeForLiveShip(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)
	p.Ship.Weapons[2].Charge = 0 // phaser bank, subsystem index 2

	ctx.tickShips(1000)
	require.Greater(t, p.Ship.Weapons[2].Charge, float32(0), "weapon charge should accumulate over a tick")
}

func TestTickShipsSkipsDeadShips(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)
	p.Ship.Alive = false
	p.Ship.Hull = 0
	before := p.Ship.Position

	ctx.tickShips(1000)
	require.Equal(t, before, p.Ship.Position, "a dead ship must not be simulated")
}

func TestSweepTimeoutsDropsInactivePeer(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.LastRecvMS = 1000

	ctx.sweepTimeouts(1000 + inactivityTimeoutMS + 1)
	require.Equal(t, PeerEmpty, p.State)
}

func TestSweepTimeoutsKeepsActivePeer(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.LastRecvMS = 1000

	ctx.sweepTimeouts(1000 + inactivityTimeoutMS - 1)
	require.NotEqual(t, PeerEmpty, p.State)
}

func TestBroadcastHealthSkipsPeersWithoutShips(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.State = PeerInGame // never spawned a ship

	var cursor int
	require.NotPanics(t, func() { ctx.broadcastHealth(&cursor) })
}

func TestTickRespawnsRecreatesShipOnExpiry(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 2)
	class := ctx.ClassByIndex(p.Ship.ClassIndex)
	p.Ship = nil
	p.RespawnTimer = game.TickInterval
	p.RespawnClass = class.Index
	p.RespawnTeam = 2

	ctx.tickRespawns(1000)

	require.NotNil(t, p.Ship, "ship should be recreated once the respawn timer expires")
	require.Equal(t, uint8(2), p.Ship.Team)
	require.True(t, p.Ship.Alive)
}

func TestTickRespawnsDoesNothingBeforeExpiry(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)
	p.Ship = nil
	p.RespawnTimer = 5.0
	p.RespawnClass = 0

	ctx.tickRespawns(1000)

	require.Nil(t, p.Ship, "ship should stay nil until the timer counts down to zero")
	require.Greater(t, p.RespawnTimer, float32(0))
}

func TestGracefulShutdownMarksShutdownAndNotifiesPeers(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)
	p.Outbox = wire.Outbox{}

	ctx.gracefulShutdown()
	require.True(t, ctx.shutdown)
	require.False(t, p.Outbox.Empty(), "remaining peers should receive an end-game notice")
}
