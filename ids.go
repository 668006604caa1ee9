package dtnsim

// ids.go defines the stable integer identifiers used throughout the arena:
// components hold ids, not direct pointers into each other, which is how
// this implementation avoids the cyclic host<->interface<->connection<->host
// object graph of the original without resorting to a garbage-collected web
// of mutual references.

// HostID is a stable integer address, unique per simulation.
type HostID int

// InterfaceID identifies one network interface owned by exactly one host.
type InterfaceID int

// ConnectionID identifies one oriented connection between two interfaces.
type ConnectionID int

// ClusterID identifies one cluster cell.
type ClusterID int

// MessageID identifies one logical message.
type MessageID int
