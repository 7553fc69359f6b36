package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface (empty = all).
	Interface string

	// TTL overrides the record TTL (0 = library default).
	TTL time.Duration

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Advertiser publishes a native UI host over mDNS.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise starts publishing h, replacing any previous advertisement. The
// advertisement stops when ctx is done or Stop is called.
func (a *Advertiser) Advertise(ctx context.Context, h *Host) error {
	if err := ValidateInstanceName(h.InstanceName); err != nil {
		return err
	}

	port := int(h.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := zeroconf.Register(
		h.InstanceName,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodeTXT(h)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register host service: %w", err)
	}
	a.server = server
	a.debugLog("Advertise: registered", "instance", h.InstanceName, "port", port)

	context.AfterFunc(ctx, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.server == server {
			server.Shutdown()
			a.server = nil
		}
	})
	return nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

func (a *Advertiser) debugLog(msg string, args ...any) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, args...)
	}
}

// BrowserConfig configures a Browser.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface (empty = all).
	Interface string
}

// Browser finds native UI hosts over mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// Browse streams hosts as they are found until ctx is done. Entries for the
// same instance seen on several interfaces are merged; only the first
// sighting is emitted.
func (b *Browser) Browse(ctx context.Context) (<-chan *Host, error) {
	out := make(chan *Host)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		hosts := make(map[string]*Host)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				h := entryToHost(entry)
				if h == nil {
					continue
				}
				if existing, found := hosts[h.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, h.Addresses)
					continue
				}
				hosts[h.InstanceName] = h
				select {
				case out <- h:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := hosts[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(hosts, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// Find returns the first host found, or the one named instance when
// instance is not empty.
func (b *Browser) Find(ctx context.Context, instance string) (*Host, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hosts, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for h := range hosts {
		if instance == "" || h.InstanceName == instance {
			return h, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return nil, ErrNotFound
}

// entryToHost converts a zeroconf entry to a Host. Entries with invalid
// TXT records are skipped.
func entryToHost(entry *zeroconf.ServiceEntry) *Host {
	h, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	h.InstanceName = entry.Instance
	h.HostName = entry.HostName
	h.Port = uint16(entry.Port)
	h.Addresses = addrs
	return h
}

// interfaces returns the named interface, or nil for all interfaces.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
