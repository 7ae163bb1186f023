package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_paint3d._tcp"

// Share is a canvas found on the local network.
type Share struct {
	Instance string
	Addr     string // host:port
}

// Advertise announces a share on port over mDNS. Shut the returned server
// down when sharing stops.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"Paint3D"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for shares for up to timeout, calling found for each one
// with an IPv4 address. Once ctx is done nothing more is reported, though
// Browse still waits for the query itself to wind down.
func Browse(ctx context.Context, timeout time.Duration, found func(Share)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 || ctx.Err() != nil {
				continue
			}
			found(Share{Instance: e.Name, Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port)})
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() { errc <- mdns.Query(params) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
		// Query owns the channel until it returns.
		<-errc
	}
	close(entries)
	<-done
	return err
}
