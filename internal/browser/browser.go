// Package browser opens the live board on the machine running the server.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander starts external programs
type Commander interface {
	Start(name string, args ...string) error
}

// ExecCommander starts commands with os/exec and does not wait for them
type ExecCommander struct{}

func (ExecCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var launchers = map[string][]string{
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"openbsd": {"xdg-open"},
	"darwin":  {"open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// Open opens target in the default browser
func Open(target string) error {
	return OpenWith(target, ExecCommander{}, runtime.GOOS)
}

// OpenWith opens target using commander as if running on goos.
// Only absolute http and https URLs are accepted.
func OpenWith(target string, commander Commander, goos string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http URL: %q", target)
	}

	launcher, ok := launchers[goos]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos)
	}
	args := append(append([]string{}, launcher[1:]...), u.String())
	return commander.Start(launcher[0], args...)
}
