// Package discovery advertises the listening endpoint over mDNS/DNS-SD so
// a peer on the local network can find the waiting session without knowing
// the address in advance.
package discovery

import (
	"fmt"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service type tlstalk registers.
	ServiceType = "_tlstalk._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Announcer keeps an mDNS registration alive until Shutdown.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers the service instance on the given port. txt carries
// optional key=value metadata records.
func Announce(instance string, port int, txt []string) (*Announcer, error) {
	if instance == "" {
		instance = "tlstalk"
	}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS register: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Shutdown deregisters the service. Safe to call on a nil Announcer.
func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
}
