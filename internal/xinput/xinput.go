// Package xinput drives the X Input Extension device hierarchy through the
// xinput(1) command.
package xinput

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotAvailable is returned when the xinput binary is missing.
var ErrNotAvailable = errors.New("xinput is not available in PATH")

// Runner executes xinput with the given arguments and returns stdout.
type Runner interface {
	Run(args ...string) ([]byte, error)
}

// ExecRunner runs the real xinput binary.
type ExecRunner struct {
	Path string // defaults to "xinput"
}

// Run executes xinput. Non-zero exits are reported with stderr attached.
func (r ExecRunner) Run(args ...string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = "xinput"
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, ErrNotAvailable
	}

	cmd := exec.Command(path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("xinput %s: %s", strings.Join(args, " "), msg)
		}
		return out, fmt.Errorf("xinput %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Device is one line of `xinput list --short`.
type Device struct {
	ID     int
	Name   string
	Line   string
	Role   string // "master pointer", "slave keyboard", "floating slave", ...
	Paired int    // bracketed id: paired master for masters, master for slaves
}

// IsMaster reports whether the device is a master (seat member).
func (d Device) IsMaster() bool {
	return strings.HasPrefix(d.Role, "master")
}

// Client wraps the xinput verbs used to build and tear down a seat.
type Client struct {
	runner Runner
}

// NewClient creates a client. A nil runner uses ExecRunner.
func NewClient(runner Runner) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{runner: runner}
}

// List returns every input device known to the server.
func (c *Client) List() ([]Device, error) {
	out, err := c.runner.Run("list", "--short")
	if err != nil {
		return nil, err
	}
	return ParseList(string(out)), nil
}

// CreateMaster creates a master pointer/keyboard pair named
// "<name> pointer" and "<name> keyboard".
func (c *Client) CreateMaster(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("xinput: master name is required")
	}
	_, err := c.runner.Run("create-master", name)
	return err
}

// Reattach moves a slave device under a master.
func (c *Client) Reattach(deviceID, masterID int) error {
	_, err := c.runner.Run("reattach", strconv.Itoa(deviceID), strconv.Itoa(masterID))
	return err
}

// RemoveMaster removes a master pair. Its slaves float back to the default
// seat and its XTEST devices are destroyed with it.
func (c *Client) RemoveMaster(masterID int) error {
	_, err := c.runner.Run("remove-master", strconv.Itoa(masterID))
	return err
}

// ParseList parses `xinput list --short` output. Lines without an id are
// skipped.
func ParseList(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		dev, ok := parseLine(line)
		if !ok {
			continue
		}
		devices = append(devices, dev)
	}
	return devices
}

func parseLine(line string) (Device, bool) {
	idx := strings.Index(line, "id=")
	if idx < 0 {
		return Device{}, false
	}

	rest := line[idx+len("id="):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	id, err := strconv.Atoi(rest[:end])
	if err != nil {
		return Device{}, false
	}

	dev := Device{
		ID:   id,
		Name: cleanLabel(line[:idx]),
		Line: line,
	}

	if open := strings.Index(rest, "["); open >= 0 {
		if closeIdx := strings.LastIndex(rest, "]"); closeIdx > open {
			dev.Role, dev.Paired = parseRole(rest[open+1 : closeIdx])
		}
	}
	return dev, true
}

// cleanLabel strips the tree-drawing prefix and padding from the label field.
func cleanLabel(s string) string {
	s = strings.TrimRight(s, " \t")
	return strings.TrimLeft(s, " \t⎡⎜⎣↳∼~")
}

func parseRole(s string) (string, int) {
	paired := 0
	if open := strings.LastIndex(s, "("); open >= 0 {
		if closeIdx := strings.LastIndex(s, ")"); closeIdx > open {
			if n, err := strconv.Atoi(strings.TrimSpace(s[open+1 : closeIdx])); err == nil {
				paired = n
			}
			s = s[:open]
		}
	}
	return strings.Join(strings.Fields(s), " "), paired
}
