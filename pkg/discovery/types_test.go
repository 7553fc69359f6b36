package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTXTRoundTrip(t *testing.T) {
	h := &Host{InstanceName: "Kitchen Tablet", Platform: "android", Version: 1}

	strs := TXTRecordsToStrings(EncodeTXT(h))
	assert.Equal(t, []string{"pf=android", "ver=1"}, strs)

	got, err := DecodeTXT(StringsToTXTRecords(strs))
	require.NoError(t, err)
	assert.Equal(t, "android", got.Platform)
	assert.Equal(t, 1, got.Version)
}

func TestEncodeTXTDefaultVersion(t *testing.T) {
	txt := EncodeTXT(&Host{Platform: "sim"})
	assert.Equal(t, "1", txt[TXTKeyVersion])
}

func TestDecodeTXTErrors(t *testing.T) {
	tests := []struct {
		name string
		txt  TXTRecordMap
		want error
	}{
		{"missing platform", TXTRecordMap{"ver": "1"}, ErrMissingRequired},
		{"missing version", TXTRecordMap{"pf": "ios"}, ErrMissingRequired},
		{"bad version", TXTRecordMap{"pf": "ios", "ver": "x"}, ErrInvalidVersion},
		{"zero version", TXTRecordMap{"pf": "ios", "ver": "0"}, ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTXT(tt.txt)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeTXT() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"pf=sim", "flag", "", "url=a=b"})
	assert.Equal(t, TXTRecordMap{"pf": "sim", "flag": "", "url": "a=b"}, txt)
}

func TestValidateInstanceName(t *testing.T) {
	assert.NoError(t, ValidateInstanceName("Kitchen Tablet"))
	assert.ErrorIs(t, ValidateInstanceName(""), ErrMissingRequired)
	long := make([]byte, MaxInstanceNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateInstanceName(string(long)), ErrInstanceNameTooLong)
}

func TestHostAddr(t *testing.T) {
	tests := []struct {
		host Host
		want string
	}{
		{Host{HostName: "tablet.local.", Port: 7420}, "tablet.local.:7420"},
		{Host{Addresses: []string{"192.168.1.5"}, Port: 7420}, "192.168.1.5:7420"},
		{Host{Addresses: []string{"fe80::1"}, Port: 9000}, "[fe80::1]:9000"},
	}
	for _, tt := range tests {
		if got := tt.host.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestEntryToHost(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "tablet.local.",
		Port:     7420,
		Text:     []string{"pf=android", "ver=1"},
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.5")},
		AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
	}
	entry.Instance = "Kitchen Tablet"

	h := entryToHost(entry)
	require.NotNil(t, h)
	assert.Equal(t, "Kitchen Tablet", h.InstanceName)
	assert.Equal(t, uint16(7420), h.Port)
	assert.Equal(t, []string{"192.168.1.5", "fe80::1"}, h.Addresses)
	assert.Equal(t, "android", h.Platform)

	entry.Text = []string{"pf=android"}
	assert.Nil(t, entryToHost(entry), "invalid TXT records are skipped")
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, addrs)

	entry := &zeroconf.ServiceEntry{AddrIPv4: []net.IP{net.ParseIP("10.0.0.1")}}
	assert.Equal(t, []string{"10.0.0.2"}, removeAddresses(addrs, entry))
}
