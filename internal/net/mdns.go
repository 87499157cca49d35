package net

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_graffitiwall._tcp"

// Advertise announces this host's wall on the local network so clients
// can join without typing an address. Callers shut the returned server
// down when the wall goes away.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"", // default ".local" domain
		"", // default OS hostname
		port,
		nil, // auto-detect IPs
		[]string{"GraffitiWall"},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("could not start mDNS server: %w", err)
	}
	return server, nil
}

// FindHost browses the local network and returns the first advertised
// wall as a host:port address.
func FindHost() (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	// Lookup runs one query round and returns; it never closes the
	// entry channel itself.
	err := mdns.Lookup(serviceType, entries)
	close(entries)
	<-done
	if err != nil {
		return "", fmt.Errorf("mDNS lookup failed: %w", err)
	}

	select {
	case addr := <-found:
		return addr, nil
	default:
		return "", fmt.Errorf("no graffiti wall advertised on this network")
	}
}
