package server

import (
	"net"
	"strconv"

	"github.com/ghostfleet/bcserver/discovery"
)

// HandleDiscoveryDatagram answers a GameSpy-style browser query or a
// master-server secure challenge arriving on addr. It never touches the
// peer table: discovery traffic is unauthenticated and unencrypted,
// answered from a point-in-time snapshot of server state.
func (ctx *Context) HandleDiscoveryDatagram(conn *net.UDPConn, addr *net.UDPAddr, data []byte) {
	if discovery.IsSecureChallenge(data) {
		challenge, ok := discovery.ExtractChallenge(data)
		if !ok {
			return
		}
		conn.WriteToUDP(discovery.BuildValidate(challenge), addr)
		if ctx.Masters != nil && ctx.Masters.IsFromMaster(addr) {
			ctx.Masters.MarkVerified(addr)
		}
		return
	}

	kind, queryID, ok := discovery.ParseQuery(data)
	if !ok {
		return
	}

	info := ctx.serverInfo()
	conn.WriteToUDP(discovery.BuildResponse(kind, info, queryID), addr)

	label := "basic"
	if kind == discovery.QueryStatus {
		label = "status"
	}
	ctx.Stats.RecordQuery(label)
	if ctx.Masters != nil {
		if hostname := ctx.Masters.RecordStatusCheck(addr); hostname != "" {
			ctx.Log.Info().Str("master", hostname).Str("addr", addr.String()).Msg("listed by")
		}
	}
}

// serverInfo snapshots the fields a discovery response reports.
func (ctx *Context) serverInfo() discovery.ServerInfo {
	info := discovery.ServerInfo{
		Hostname:      ctx.Cfg.Name,
		MissionScript: ctx.Cfg.Map,
		MapName:       ctx.Cfg.Map,
		GameMode:      "dm",
		NumPlayers:    ctx.Peers.InGameCount(),
		MaxPlayers:    ctx.Cfg.MaxPlayers,
		TimeLimit:     ctx.Cfg.TimeLimit,
		FragLimit:     ctx.Cfg.FragLimit,
		StarSystem:    strconv.Itoa(int(ctx.StarSystem)),
	}
	ctx.Peers.Each(func(p *Peer) {
		if p.State == PeerInGame && p.Name != "" {
			info.Players = append(info.Players, p.Name)
		}
	})
	return info
}
