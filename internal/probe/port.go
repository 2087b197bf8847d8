package probe

import (
	"fmt"
	"net"
)

// PortCheck reports whether the backend's fixed port is already held by
// some process. It is advisory: the check binds and immediately releases,
// so nothing prevents another process from taking the port right after.
type PortCheck struct {
	Host string
	Port int
}

func NewPortCheck(port int) *PortCheck {
	return &PortCheck{Host: "127.0.0.1", Port: port}
}

// Occupied attempts to bind the port on loopback. A failed bind means
// something already holds it; a successful bind is released immediately and
// means the port is free.
func (p *PortCheck) Occupied() bool {
	addr := net.JoinHostPort(p.Host, fmt.Sprintf("%d", p.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return true
	}
	_ = ln.Close()
	return false
}
