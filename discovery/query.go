// Package discovery implements the GameSpy-style query/response protocol
// used for LAN and internet server discovery, plus the master-server
// heartbeat lifecycle (see spec.md §4.4 and §4.9).
package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryKind distinguishes the two query shapes stock clients send.
type QueryKind int

const (
	// QueryBasic asks for just enough to populate a server browser row.
	QueryBasic QueryKind = iota
	// QueryStatus additionally asks for rules and the connected-player list.
	QueryStatus
)

// ServerInfo is the snapshot of server state a query response is built
// from. It mirrors the fields stock BC's QR1 callbacks report.
type ServerInfo struct {
	Hostname      string
	MissionScript string
	MapName       string
	GameMode      string
	StarSystem    string
	NumPlayers    int
	MaxPlayers    int
	TimeLimit     int
	FragLimit     int
	Players       []string
}

// IsQuery reports whether data looks like a GameSpy query: it starts with
// a backslash. GameSpy traffic is never encrypted, so this check applies
// to the raw datagram.
func IsQuery(data []byte) bool {
	return len(data) > 0 && data[0] == '\\'
}

// ParseQuery classifies an incoming query and extracts its echoed queryid,
// if present. ok is false when data isn't recognizable as either kind.
func ParseQuery(data []byte) (kind QueryKind, queryID string, ok bool) {
	if !IsQuery(data) {
		return 0, "", false
	}
	s := string(data)
	switch {
	case strings.HasPrefix(s, "\\status\\"):
		kind = QueryStatus
	case strings.HasPrefix(s, "\\basic\\"):
		kind = QueryBasic
	default:
		return 0, "", false
	}
	queryID = extractPair(s, "queryid")
	return kind, queryID, true
}

// extractPair returns the value following \key\ in s, or "" if absent.
func extractPair(s, key string) string {
	marker := "\\" + key + "\\"
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	if end := strings.IndexByte(rest, '\\'); end >= 0 {
		return rest[:end]
	}
	return rest
}

// BuildResponse formats a \key\value\ response for the given query kind.
// Status responses place \final\ before \queryid\; queryid echoes the
// query's, defaulting to "1.1" when the query carried none.
func BuildResponse(kind QueryKind, info ServerInfo, queryID string) []byte {
	if queryID == "" {
		queryID = "1.1"
	}

	var b strings.Builder
	pair := func(k, v string) { fmt.Fprintf(&b, "\\%s\\%s", k, v) }

	switch kind {
	case QueryBasic:
		pair("hostname", info.Hostname)
		pair("missionscript", info.MissionScript)
		pair("mapname", info.MapName)
		pair("numplayers", strconv.Itoa(info.NumPlayers))
		pair("maxplayers", strconv.Itoa(info.MaxPlayers))
		pair("gamemode", info.GameMode)
	case QueryStatus:
		pair("hostname", info.Hostname)
		pair("missionscript", info.MissionScript)
		pair("mapname", info.MapName)
		pair("numplayers", strconv.Itoa(info.NumPlayers))
		pair("maxplayers", strconv.Itoa(info.MaxPlayers))
		pair("gamemode", info.GameMode)
		pair("gamename", "bcommander")
		pair("gamever", "1.1")
		pair("location", "0")
		pair("timelimit", strconv.Itoa(info.TimeLimit))
		pair("fraglimit", strconv.Itoa(info.FragLimit))
		pair("system", info.StarSystem)
		for i, name := range info.Players {
			pair(fmt.Sprintf("player_%d", i), name)
		}
	}

	b.WriteString("\\final\\")
	pair("queryid", queryID)
	return []byte(b.String())
}

// IsSecureChallenge reports whether data is a \secure\<challenge> packet
// from a master server.
func IsSecureChallenge(data []byte) bool {
	return strings.HasPrefix(string(data), "\\secure\\")
}

// ExtractChallenge pulls the challenge token out of a \secure\ packet.
func ExtractChallenge(data []byte) (string, bool) {
	if !IsSecureChallenge(data) {
		return "", false
	}
	rest := string(data)[len("\\secure\\"):]
	if end := strings.IndexByte(rest, '\\'); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}
