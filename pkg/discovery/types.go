package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of log servers.
	ServiceType = "_logview._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default log server port.
	DefaultPort = 9876

	// ProtocolVersion is the viewer link version advertised in TXT records.
	ProtocolVersion = 1
)

// TXT record key constants.
const (
	TXTKeyVersion     = "ver" // Protocol version
	TXTKeyRecordingID = "rid" // Recording ID (optional)
	TXTKeyApp         = "app" // Application name (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for FindAll.
	BrowseTimeout = 3 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameEmpty   = errors.New("instance name is empty")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
)

// ServiceInfo describes the service a log server advertises.
type ServiceInfo struct {
	// InstanceName is the user-visible service name.
	InstanceName string

	// Port is the transport listen port (default: DefaultPort).
	Port uint16

	// RecordingID identifies the run being streamed.
	RecordingID string

	// App names the producing application.
	App string
}

// Service is a log server found on the network.
type Service struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string
	Version      int
	RecordingID  string
	App          string
}

// URL returns a transport address for the service, preferring the first
// resolved address over the host name.
func (s Service) URL() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return "tcp://" + net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
}
