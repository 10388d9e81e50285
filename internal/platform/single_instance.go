package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock. While the control server is
// enabled the lock is the server's own listening socket.
type InstanceGuard struct {
	listener net.Listener
	address  string
	handed   bool
}

// AcquireSingleInstance binds address, or a port derived from appName when address is empty.
func AcquireSingleInstance(appName, address string) (*InstanceGuard, error) {
	if address == "" {
		address = fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceGuard{listener: listener, address: listener.Addr().String()}, nil
}

// GuardListener wraps an already bound listener, such as one passed by systemd.
func GuardListener(listener net.Listener) *InstanceGuard {
	return &InstanceGuard{listener: listener, address: listener.Addr().String()}
}

// Listener hands the bound socket to a server. The server then owns closing it.
func (guard *InstanceGuard) Listener() net.Listener {
	if guard == nil {
		return nil
	}
	guard.handed = true
	return guard.listener
}

// Release frees the single instance lock unless a server took ownership of it.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil || guard.handed {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
