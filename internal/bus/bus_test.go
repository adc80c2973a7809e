package bus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func shortDir(t *testing.T) string {
	t.Helper()
	// unix socket paths are length limited; t.TempDir can be too deep
	dir, err := os.MkdirTemp("", "bus")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestDefault(t *testing.T) {
	t.Setenv(EnvRuntimeDir, "/run/user/1000/burnsub")
	b, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if b.SockPath() != "/run/user/1000/burnsub/control.sock" {
		t.Errorf("SockPath() = %s", b.SockPath())
	}
	if b.LockPath() != "/run/user/1000/burnsub/burnsub.lock" {
		t.Errorf("LockPath() = %s", b.LockPath())
	}
}

func TestLock(t *testing.T) {
	b := Bus{Dir: filepath.Join(t.TempDir(), "nested")}

	first, err := b.Lock()
	if err != nil {
		t.Fatalf("first Lock() error = %v", err)
	}

	if _, err := b.Lock(); err == nil {
		t.Fatal("second Lock() should fail while the first is held")
	} else if !strings.Contains(err.Error(), "already running") {
		t.Errorf("unexpected error: %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	again, err := b.Lock()
	if err != nil {
		t.Fatalf("Lock() after Unlock error = %v", err)
	}
	again.Unlock()
}

func TestSendCommand(t *testing.T) {
	b := Bus{Dir: shortDir(t)}

	ln, err := b.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		line, _ := bufio.NewReader(c).ReadString('\n')
		fmt.Fprintf(c, "ECHO %c\n", line[0])
	}()

	resp, err := b.SendCommand('s')
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if resp != "ECHO s" {
		t.Errorf("SendCommand() = %q, want %q", resp, "ECHO s")
	}
}

func TestListenRemovesStaleSocket(t *testing.T) {
	b := Bus{Dir: shortDir(t)}
	if err := os.WriteFile(b.SockPath(), []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}

	ln, err := b.Listen()
	if err != nil {
		t.Fatalf("Listen() over stale socket error = %v", err)
	}
	ln.Close()
}

func TestSendCommand_NoListener(t *testing.T) {
	b := Bus{Dir: shortDir(t)}
	if _, err := b.SendCommand('s'); err == nil {
		t.Error("SendCommand() without listener should fail")
	}
}
