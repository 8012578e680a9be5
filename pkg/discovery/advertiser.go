package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL. Zero uses the zeroconf default.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{}
}

// registration is a live mDNS registration.
type registration struct {
	setText  func(txt []string)
	shutdown func()
}

// registerFunc publishes a service instance.
type registerFunc func(instance string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (*registration, error)

func zeroconfRegister(instance string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (*registration, error) {
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return &registration{
		setText:  func(txt []string) { server.SetText(txt) },
		shutdown: func() { server.Shutdown() },
	}, nil
}

// Advertiser publishes log servers over mDNS.
type Advertiser struct {
	config   AdvertiserConfig
	register registerFunc
}

// NewAdvertiser creates a new mDNS advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{
		config:   config,
		register: zeroconfRegister,
	}
}

// Advertise publishes info with the default configuration.
func Advertise(info ServiceInfo) (*Advertisement, error) {
	return NewAdvertiser(DefaultAdvertiserConfig()).Advertise(info)
}

// Advertise starts advertising a log server. Stop the returned
// Advertisement to withdraw it.
func (a *Advertiser) Advertise(info ServiceInfo) (*Advertisement, error) {
	if err := ValidateInstanceName(info.InstanceName); err != nil {
		return nil, err
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	txt := TXTRecordsToStrings(EncodeServiceTXT(&info))
	reg, err := a.register(info.InstanceName, port, txt, interfacesByName(a.config.Interface), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register log service: %w", err)
	}

	return &Advertisement{info: info, reg: reg}, nil
}

// Advertisement is a published log server.
type Advertisement struct {
	mu      sync.Mutex
	info    ServiceInfo
	reg     *registration
	stopped bool
}

// Info returns what is currently advertised.
func (ad *Advertisement) Info() ServiceInfo {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	return ad.info
}

// SetRecordingID updates the rid TXT record, e.g. when the producer
// starts a new recording.
func (ad *Advertisement) SetRecordingID(id string) error {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	if ad.stopped {
		return ErrNotFound
	}
	ad.info.RecordingID = id
	ad.reg.setText(TXTRecordsToStrings(EncodeServiceTXT(&ad.info)))
	return nil
}

// Stop withdraws the advertisement. It is safe to call more than once.
func (ad *Advertisement) Stop() {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	if ad.stopped {
		return
	}
	ad.stopped = true
	ad.reg.shutdown()
}

// interfacesByName returns the named interface, or nil for all interfaces.
func interfacesByName(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
