// Package discovery announces the editing server on the local network.
package discovery

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_trackforge._tcp"

// TXT records published with the service.
func records(wsPath string) []string {
	return []string{"app=trackforge", "ws=" + wsPath}
}

// Advertise publishes the server on port until the returned server is
// shut down.
func Advertise(port int, wsPath string) (*mdns.Server, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("advertise: invalid port %d", port)
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("advertise: hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, records(wsPath))
	if err != nil {
		return nil, fmt.Errorf("advertise: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("advertise: start server: %w", err)
	}
	return server, nil
}
