package main

import "time"

// GlobalFlags holds persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
}

// ClientFlags holds connection flags for commands that talk to a running
// sidekick over its local HTTP surface.
type ClientFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// LogsFlags holds flags for the logs command.
type LogsFlags struct {
	Open bool
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}
