package main

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeServe(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newServeCmd()
	cmd.SetArgs(args)
	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return")
		return nil
	}
}

func TestServe_NetworkDetectorError(t *testing.T) {
	err := executeServe(t, "--listen", "127.0.0.1:0", "--net-status", "--rpc", "localhost:8899")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no host")
}

func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = executeServe(t, "--listen", ln.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc server")
}

func TestServe_BadNotifyBuffer(t *testing.T) {
	err := executeServe(t, "--notify-buffer", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify-buffer")
}
