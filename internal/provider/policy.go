package provider

import (
	"strings"

	"datasync/internal/apperr"
)

// Policy selects which store(s) serve a call and in which order.
type Policy int

const (
	// Network consults only the authoritative store.
	Network Policy = iota
	// NetworkSync consults the authoritative store and writes the result behind into storage.
	NetworkSync
	// Storage consults only the local store.
	Storage
	// StorageSync serves from the local store, falling back to the network when the
	// cached content is invalid. Writes go to storage first and behind into the network.
	StorageSync
)

var policyNames = map[Policy]string{
	Network:     "network",
	NetworkSync: "network_sync",
	Storage:     "storage",
	StorageSync: "storage_sync",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePolicy parses the names produced by Policy.String. Dashes and case are ignored.
func ParsePolicy(s string) (Policy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "network":
		return Network, nil
	case "network_sync", "networksync":
		return NetworkSync, nil
	case "storage":
		return Storage, nil
	case "storage_sync", "storagesync":
		return StorageSync, nil
	}
	return 0, apperr.InvalidInput("provider.ParsePolicy", "unknown policy %q", s)
}
