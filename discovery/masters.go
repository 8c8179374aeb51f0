package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// MaxMasters caps the number of master servers a list tracks.
const MaxMasters = 16

// HeartbeatInterval is how often an enabled master gets re-pinged.
const HeartbeatInterval = 60 * time.Second

// ProbeTimeout bounds the startup probe window spent waiting for
// verification responses.
const ProbeTimeout = 3 * time.Second

// DefaultMasters lists the public master servers a stock install
// registers with: 333networks affiliates plus OpenSpy.
var DefaultMasters = []string{
	"master.333networks.com:27900",
	"master.errorist.eu:27900",
	"master.gonespy.com:27900",
	"master.newbiesplayground.net:27900",
	"master-au.unrealarchive.org:27900",
	"master.noccer.de:27900",
	"master.eatsleeput.com:27900",
	"master.frag-net.com:27900",
	"master.exsurge.net:27900",
	"master.openspy.net:27900",
}

// Entry tracks one master server's resolved address and heartbeat state.
type Entry struct {
	Hostname     string
	Addr         *net.UDPAddr
	LastBeat     time.Time
	Enabled      bool
	Verified     bool
	StatusChecks int
}

// List manages the set of master servers a running instance heartbeats.
type List struct {
	Entries  []*Entry
	GamePort uint16
}

// NewList resolves hostPorts (each "host:port") against gamePort and
// returns a List. DNS failures are logged by the caller (resolution
// errors here just drop the entry, matching the C reference's
// fail-open behavior — heartbeating continues with whatever resolved).
func NewList(hostPorts []string, gamePort uint16) *List {
	ml := &List{GamePort: gamePort}
	for _, hp := range hostPorts {
		ml.Add(hp)
	}
	return ml
}

// Add resolves and appends a single "host:port" master. Returns false if
// the list is full or resolution failed.
func (ml *List) Add(hostPort string) bool {
	if len(ml.Entries) >= MaxMasters {
		return false
	}
	addr, err := net.ResolveUDPAddr("udp4", hostPort)
	if err != nil {
		return false
	}
	ml.Entries = append(ml.Entries, &Entry{
		Hostname: hostPort,
		Addr:     addr,
		Enabled:  true,
	})
	return true
}

// heartbeatPayload formats \heartbeat\<port>\gamename\bcommander\, adding
// \final\ for the shutdown variant.
func heartbeatPayload(gamePort uint16, final bool) []byte {
	s := fmt.Sprintf("\\heartbeat\\%d\\gamename\\bcommander\\", gamePort)
	if final {
		s += "final\\"
	}
	return []byte(s)
}

// Sender abstracts the UDP socket a master heartbeat is sent over.
type Sender interface {
	SendTo(addr *net.UDPAddr, payload []byte) error
}

// Probe sends an initial heartbeat to every enabled master and returns the
// number marked enabled (verification itself happens as response packets
// arrive through MarkVerified from the main receive loop, since Probe
// doesn't block the caller's event loop waiting for replies).
func (ml *List) Probe(sock Sender, now time.Time) int {
	n := 0
	for _, e := range ml.Entries {
		if !e.Enabled {
			continue
		}
		sock.SendTo(e.Addr, heartbeatPayload(ml.GamePort, false))
		e.LastBeat = now
		n++
	}
	return n
}

// IsFromMaster reports whether from matches a known enabled master.
func (ml *List) IsFromMaster(from *net.UDPAddr) bool {
	for _, e := range ml.Entries {
		if e.Enabled && addrEqual(e.Addr, from) {
			return true
		}
	}
	return false
}

// MarkVerified flags the master at from as verified (first response
// received) and returns its hostname, or "" if from isn't known or was
// already verified.
func (ml *List) MarkVerified(from *net.UDPAddr) string {
	for _, e := range ml.Entries {
		if e.Enabled && !e.Verified && addrEqual(e.Addr, from) {
			e.Verified = true
			return e.Hostname
		}
	}
	return ""
}

// RecordStatusCheck increments the status-check counter for the master at
// from and returns its hostname on the first check, "" otherwise (or if
// from isn't a known master).
func (ml *List) RecordStatusCheck(from *net.UDPAddr) string {
	for _, e := range ml.Entries {
		if e.Enabled && addrEqual(e.Addr, from) {
			e.StatusChecks++
			if e.StatusChecks == 1 {
				return e.Hostname
			}
			return ""
		}
	}
	return ""
}

// NotifyStatusChange immediately re-heartbeats every enabled master,
// bypassing the periodic interval check. Invoked on every player-count
// change (connect/disconnect), a distinct out-of-band heartbeat from the
// periodic one Tick sends.
func (ml *List) NotifyStatusChange(sock Sender, now time.Time) {
	for _, e := range ml.Entries {
		if !e.Enabled {
			continue
		}
		sock.SendTo(e.Addr, heartbeatPayload(ml.GamePort, false))
		e.LastBeat = now
	}
}

// Tick re-heartbeats any enabled master whose interval has elapsed.
func (ml *List) Tick(sock Sender, now time.Time) {
	for _, e := range ml.Entries {
		if e.Enabled && now.Sub(e.LastBeat) >= HeartbeatInterval {
			sock.SendTo(e.Addr, heartbeatPayload(ml.GamePort, false))
			e.LastBeat = now
		}
	}
}

// Shutdown sends a final heartbeat to every enabled master and disables
// them, so a restarted Tick loop doesn't re-beat a server that's exiting.
func (ml *List) Shutdown(sock Sender) {
	for _, e := range ml.Entries {
		if !e.Enabled {
			continue
		}
		sock.SendTo(e.Addr, heartbeatPayload(ml.GamePort, true))
		e.Enabled = false
	}
}

func addrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return false
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// ValidHostPort reports whether s parses as a "host:port" master address,
// used by config loading to reject bad -master flags early.
func ValidHostPort(s string) bool {
	_, p, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(p)
	return err == nil && n > 0 && n <= 65535
}
