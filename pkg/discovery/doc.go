// Package discovery implements mDNS/DNS-SD discovery for native UI hosts.
//
// A host advertises the _nativeui._tcp service. The instance name is the
// user-visible host name and the port is the bridge stream port.
// TXT records carry:
//
//   - pf: platform of the native runtime (for example "android" or "sim")
//   - ver: bridge protocol version
//
// Browsers aggregate entries by instance name, merging the addresses seen
// on several interfaces into one Host.
package discovery
