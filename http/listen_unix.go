//go:build unix

package http

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// listen binds addr with SO_REUSEADDR so a restarted device can rebind its
// port while old sockets sit in TIME_WAIT.
func listen(ctx context.Context, addr string) (net.Listener, error) {
	config := net.ListenConfig{Control: reuseAddr}
	return config.Listen(ctx, "tcp", addr)
}

func reuseAddr(network, address string, conn syscall.RawConn) error {
	var sockErr error
	err := conn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
