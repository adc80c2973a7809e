package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const SockName = "control.sock"
const LockName = "burnsub.lock"
const ProtoVer = "0.1"

// EnvRuntimeDir overrides where the socket and lock live.
const EnvRuntimeDir = "BURNSUB_RUNTIME_DIR"

// Bus locates the watcher's control socket and instance lock.
type Bus struct {
	Dir string
}

// Default returns the bus under ~/.cache/burnsub
func Default() (Bus, error) {
	if dir := os.Getenv(EnvRuntimeDir); dir != "" {
		return Bus{Dir: dir}, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return Bus{}, err
	}
	return Bus{Dir: filepath.Join(dir, "burnsub")}, nil
}

func (b Bus) SockPath() string {
	return filepath.Join(b.Dir, SockName)
}

func (b Bus) LockPath() string {
	return filepath.Join(b.Dir, LockName)
}

// Lock takes the single-instance lock. The returned lock must be released
// with Unlock.
func (b Bus) Lock() (*flock.Flock, error) {
	if err := os.MkdirAll(b.Dir, 0o700); err != nil {
		return nil, err
	}
	lock := flock.New(b.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("watcher already running (lock held at %s)", b.LockPath())
	}
	return lock, nil
}

func (b Bus) Listen() (net.Listener, error) {
	if err := os.MkdirAll(b.Dir, 0o700); err != nil {
		return nil, err
	}
	sp := b.SockPath()
	_ = os.Remove(sp) // stale socket from last run
	return net.Listen("unix", sp)
}

func (b Bus) Dial() (net.Conn, error) {
	return net.Dial("unix", b.SockPath())
}

// SendCommand writes a one-byte command and returns the single-line reply
// without its newline.
func (b Bus) SendCommand(cmd byte) (string, error) {
	c, err := b.Dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	if _, err := c.Write([]byte{cmd, '\n'}); err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(c).ReadString('\n')
	return strings.TrimSuffix(resp, "\n"), err
}
