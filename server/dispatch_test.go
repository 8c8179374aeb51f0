package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/protocol"
	"github.com/ghostfleet/bcserver/wire"
)

// spawnInGamePeer gets a peer through the handshake and spawns a ship for
// it, the way a real client does via CONNECT -> lobby -> NEW_PLAYER_IN_GAME
// -> OBJ_CREATE_TEAM.
func spawnInGamePeer(t *testing.T, ctx *Context, n int, team uint8) *Peer {
	t.Helper()
	ctx.handleConnect(testAddr(n), 1000)
	p := ctx.Peers.ByAddr(testAddr(n))
	p.State = PeerInGame
	ctx.dispatchOpcode(p, []byte{protocol.OpObjCreateTeam, 0, team}, 1000)
	require.NotNil(t, p.Ship)
	return p
}

func TestChatOpcodeIsPassThroughRelay(t *testing.T) {
	ctx := testContext(t)
	sender := spawnInGamePeer(t, ctx, 1, 0)
	other := spawnInGamePeer(t, ctx, 2, 0)
	other.Outbox = wire.Outbox{}

	msg := []byte{protocol.OpChat, 'h', 'i'}
	ctx.dispatchOpcode(sender, msg, 2000)

	require.False(t, other.Outbox.Empty(), "chat must be relayed to the other in-game peer")
}

func TestObjCreateTeamSpawnsShipAndRelays(t *testing.T) {
	ctx := testContext(t)
	sender := spawnInGamePeer(t, ctx, 1, 1)
	require.True(t, sender.Ship.Alive)
	require.Equal(t, uint8(1), sender.Ship.Team)
}

func TestTorpedoFireRejectedWithoutShipCountsViolation(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.State = PeerInGame

	payload := protocol.BuildTorpedoFire(p.ObjectID, 0, 0, 0, 1, false, 0, 0, 0, 0)
	ctx.dispatchOpcode(p, payload, 1000)
	require.Equal(t, 1, p.AntiCheatViolations)
}

func TestRapidFireViolationsBootAtThreshold(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.State = PeerInGame

	payload := protocol.BuildTorpedoFire(p.ObjectID, 0, 0, 0, 1, false, 0, 0, 0, 0)
	for i := 0; i < rapidFireViolationLimit; i++ {
		ctx.dispatchOpcode(p, payload, 1000)
	}
	require.Equal(t, PeerEmpty, p.State, "peer should be booted once violations reach the threshold")
}

func TestValidTorpedoFireResetsViolationCounterAndRelays(t *testing.T) {
	ctx := testContext(t)
	shooter := spawnInGamePeer(t, ctx, 1, 0)
	shooter.AntiCheatViolations = 2
	other := spawnInGamePeer(t, ctx, 2, 0)
	other.Outbox = wire.Outbox{}

	payload := protocol.BuildTorpedoFire(shooter.ObjectID, 1, 0, 0, 1, false, 0, 0, 0, 0)
	ctx.dispatchOpcode(shooter, payload, 2000)

	require.Equal(t, 0, shooter.AntiCheatViolations)
	require.False(t, other.Outbox.Empty())
}

func TestTargetedBeamFireKillsAndEndsGameAtFragLimit(t *testing.T) {
	ctx := testContext(t)
	ctx.Cfg.FragLimit = 1
	shooter := spawnInGamePeer(t, ctx, 1, 0)
	target := spawnInGamePeer(t, ctx, 2, 1)
	target.Ship.Hull = 1       // one more hit kills it
	target.Ship.Shields = [6]float32{} // no shield absorption in the way

	// subsystem 3 is the torpedo tube on the default class, the first
	// weapon-bearing slot with a nonzero damage rating.
	payload := protocol.BuildBeamFire(shooter.ObjectID, 3, 0, 0, 1, true, target.ObjectID)
	killedShip := target.Ship

	ctx.dispatchOpcode(shooter, payload, 3000)

	require.False(t, killedShip.Alive, "target should have died from the authoritative hit")
	require.Nil(t, target.Ship, "a dead peer's ship is cleared until it respawns")
	require.True(t, ctx.GameEnded, "frag limit of 1 should end the game on this kill")
}

func TestTargetedBeamFireKillSchedulesRespawnWhenGameContinues(t *testing.T) {
	ctx := testContext(t)
	ctx.Cfg.FragLimit = 100
	shooter := spawnInGamePeer(t, ctx, 1, 0)
	target := spawnInGamePeer(t, ctx, 2, 1)
	target.Ship.Hull = 1
	target.Ship.Shields = [6]float32{}
	wantClass := target.Ship.ClassIndex
	wantTeam := target.Ship.Team

	payload := protocol.BuildBeamFire(shooter.ObjectID, 3, 0, 0, 1, true, target.ObjectID)
	ctx.dispatchOpcode(shooter, payload, 3000)

	require.False(t, ctx.GameEnded)
	require.Nil(t, target.Ship)
	require.Equal(t, respawnDelaySec, target.RespawnTimer)
	require.Equal(t, wantClass, target.RespawnClass)
	require.Equal(t, wantTeam, target.RespawnTeam)
}

func TestCloakRequiresLiveShip(t *testing.T) {
	ctx := testContext(t)
	ctx.handleConnect(testAddr(1), 1000)
	p := ctx.Peers.ByAddr(testAddr(1))
	p.State = PeerInGame

	ok := ctx.tryCloak(p, true)
	require.False(t, ok, "cloak must fail gracefully with no ship rather than panic")
}

func TestCloakEngageAndDisengageRoundTrips(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)

	require.True(t, ctx.tryCloak(p, true))
	require.Equal(t, game.CloakCloaking, p.Ship.CloakState)
}

func TestACKReconciliationMatchesQueuedSequence(t *testing.T) {
	ctx := testContext(t)
	p := spawnInGamePeer(t, ctx, 1, 0)

	before := p.Reliable.Count()
	queueReliable(p, []byte{protocol.OpChat, 'x'}, 1000)
	require.Equal(t, before+1, p.Reliable.Count())

	ackedSeq := p.OutSeq - 256 // the sequence queueReliable just assigned
	counter := byte(ackedSeq >> 8)
	p.Reliable.Ack(uint16(counter) << 8)
	require.Equal(t, before, p.Reliable.Count(), "ack should have cleared the pending entry")
}
