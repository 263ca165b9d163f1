package main

import (
	"fmt"
	"os"

	"github.com/chess10kp/webdesk/internal/config"
	"github.com/chess10kp/webdesk/internal/ipc"
)

func socketPath() string {
	if path := os.Getenv("WEBDESK_SOCKET"); path != "" {
		return path
	}
	return config.DefaultConfig.SocketPath
}

func main() {
	cmd := newRootCmd(func(msg []byte) error {
		return ipc.Send(socketPath(), msg)
	})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
