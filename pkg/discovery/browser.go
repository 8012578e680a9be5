package discovery

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// OnError is called when Browse fails after it has returned, for
	// example when no multicast interface is usable.
	OnError func(error)
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{}
}

// ServiceEntry is a raw mDNS answer for one interface.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToService converts a ServiceEntry to a Service.
func (e *ServiceEntry) ToService() (*Service, error) {
	svc := &Service{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    slices.Clone(e.Addrs),
	}
	if err := DecodeServiceTXT(StringsToTXTRecords(e.Text), svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func entryFromZeroconf(e *zeroconf.ServiceEntry) ServiceEntry {
	addrs := make([]string, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	for _, ip := range e.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range e.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return ServiceEntry{
		Instance: e.Instance,
		Host:     e.HostName,
		Port:     uint16(e.Port),
		Text:     e.Text,
		Addrs:    addrs,
	}
}

// browseFunc streams raw entries until ctx is done.
type browseFunc func(ctx context.Context, entries, removed chan<- ServiceEntry, opts ...zeroconf.ClientOption) error

func zeroconfBrowse(ctx context.Context, entries, removed chan<- ServiceEntry, opts ...zeroconf.ClientOption) error {
	zEntries := make(chan *zeroconf.ServiceEntry)
	zRemoved := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(entries)
		defer close(removed)
		for {
			select {
			case e, ok := <-zEntries:
				if !ok {
					return
				}
				select {
				case entries <- entryFromZeroconf(e):
				case <-ctx.Done():
					return
				}
			case e := <-zRemoved:
				if e == nil {
					continue
				}
				select {
				case removed <- entryFromZeroconf(e):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return zeroconf.Browse(ctx, ServiceType, Domain, zEntries, zRemoved, opts...)
}

// Browser finds log servers over mDNS.
type Browser struct {
	config BrowserConfig
	browse browseFunc
}

// NewBrowser creates a new mDNS browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{
		config: config,
		browse: zeroconfBrowse,
	}
}

// Browse follows log servers with the default configuration.
func Browse(ctx context.Context) (<-chan Service, error) {
	return NewBrowser(DefaultBrowserConfig()).Browse(ctx)
}

// FindAll lists log servers with the default configuration.
func FindAll(ctx context.Context, timeout time.Duration) ([]Service, error) {
	return NewBrowser(DefaultBrowserConfig()).FindAll(ctx, timeout)
}

// Browse searches for log servers until ctx is done, then closes the
// returned channel. A Service is sent when an instance first appears and
// again whenever it gains addresses from another interface; consumers key
// on InstanceName. Entries with unusable TXT records are skipped. If the
// mDNS query fails the channel is closed early and the error goes to
// BrowserConfig.OnError.
func (b *Browser) Browse(ctx context.Context) (<-chan Service, error) {
	out, errc := b.run(ctx)
	go func() {
		if err, ok := <-errc; ok && b.config.OnError != nil {
			b.config.OnError(err)
		}
	}()
	return out, nil
}

// run starts browsing. errc carries at most one error and is closed once
// the underlying query has returned.
func (b *Browser) run(ctx context.Context) (<-chan Service, <-chan error) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Service)
	entries := make(chan ServiceEntry)
	removed := make(chan ServiceEntry)
	errc := make(chan error, 1)

	go func() {
		b.aggregate(ctx, entries, removed, out)
		cancel()
	}()

	go func() {
		defer close(errc)
		err := b.browse(ctx, entries, removed, b.browserOptions()...)
		if err != nil && ctx.Err() == nil {
			errc <- fmt.Errorf("browse %s: %w", ServiceType, err)
			cancel()
		}
	}()

	return out, errc
}

// aggregate merges per-interface entries into one Service per instance.
func (b *Browser) aggregate(ctx context.Context, entries, removed <-chan ServiceEntry, out chan<- Service) {
	defer close(out)

	services := make(map[string]*Service)

	emit := func(svc *Service) bool {
		snapshot := *svc
		snapshot.Addresses = slices.Clone(svc.Addresses)
		select {
		case out <- snapshot:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			svc, err := entry.ToService()
			if err != nil {
				continue
			}

			existing, found := services[svc.InstanceName]
			if !found {
				services[svc.InstanceName] = svc
				if !emit(svc) {
					return
				}
				continue
			}

			merged := mergeAddresses(existing.Addresses, svc.Addresses)
			if len(merged) == len(existing.Addresses) {
				continue
			}
			existing.Addresses = merged
			if !emit(existing) {
				return
			}

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if existing, found := services[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry.Addrs)
				if len(existing.Addresses) == 0 {
					delete(services, entry.Instance)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// FindAll browses for timeout (or until ctx is done) and returns every
// log server seen, sorted by instance name. Finding nothing is not an
// error; a failed mDNS query is.
func (b *Browser) FindAll(ctx context.Context, timeout time.Duration) ([]Service, error) {
	if timeout <= 0 {
		timeout = BrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, errc := b.run(ctx)

	found := make(map[string]Service)
	for svc := range results {
		found[svc.InstanceName] = svc
	}
	cancel()
	if err := <-errc; err != nil {
		return nil, err
	}

	services := make([]Service, 0, len(found))
	for _, svc := range found {
		services = append(services, svc)
	}
	slices.SortFunc(services, func(a, b Service) int {
		return cmp.Compare(a.InstanceName, b.InstanceName)
	})
	return services, nil
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if ifaces := interfacesByName(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	return opts
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	for _, addr := range added {
		if !slices.Contains(existing, addr) {
			existing = append(existing, addr)
		}
	}
	return existing
}

// removeAddresses drops the given addresses from the list.
func removeAddresses(addresses, gone []string) []string {
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !slices.Contains(gone, addr) {
			result = append(result, addr)
		}
	}
	return result
}
