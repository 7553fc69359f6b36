package discovery

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// ServiceType is the DNS-SD service type of a native UI host.
	ServiceType = "_nativeui._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default bridge stream port.
	DefaultPort = 7420

	// ProtocolVersion is the bridge protocol version advertised by hosts.
	ProtocolVersion = 1

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyPlatform = "pf"
	TXTKeyVersion  = "ver"
)

// Discovery errors.
var (
	ErrMissingRequired     = errors.New("missing required field")
	ErrInvalidVersion      = errors.New("invalid protocol version")
	ErrInstanceNameTooLong = errors.New("instance name too long")
	ErrNotFound            = errors.New("host not found")
)

// Host is an advertised native UI host.
type Host struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// HostName is the mDNS host name (set by browsers).
	HostName string

	// Port is the bridge stream port.
	Port uint16

	// Addresses are the IP addresses the host was seen on (set by browsers).
	Addresses []string

	// Platform is the platform of the native runtime.
	Platform string

	// Version is the bridge protocol version.
	Version int
}

// Addr returns host:port for the first known address.
func (h *Host) Addr() string {
	host := h.HostName
	if len(h.Addresses) > 0 {
		host = h.Addresses[0]
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return host + ":" + strconv.Itoa(int(h.Port))
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records for a host.
func EncodeTXT(h *Host) TXTRecordMap {
	version := h.Version
	if version == 0 {
		version = ProtocolVersion
	}
	return TXTRecordMap{
		TXTKeyPlatform: h.Platform,
		TXTKeyVersion:  strconv.Itoa(version),
	}
}

// DecodeTXT parses host TXT records.
func DecodeTXT(txt TXTRecordMap) (*Host, error) {
	pf, ok := txt[TXTKeyPlatform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyPlatform)
	}
	vs, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	v, err := strconv.Atoi(vs)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, vs)
	}
	return &Host{Platform: pf, Version: v}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings. Keys are emitted in sorted order.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]string, 0, len(txt))
	for _, k := range keys {
		result = append(result, fmt.Sprintf("%s=%s", k, txt[k]))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if found {
			txt[k] = v
		} else if k != "" {
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: instance name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
