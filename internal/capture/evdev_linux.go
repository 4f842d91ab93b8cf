//go:build linux

package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"keydyn/internal/dynamics"
)

// EvdevSource reads key transitions from /dev/input/event* on Linux.
type EvdevSource struct {
	mu      sync.Mutex
	running bool
	fd      int
	ch      chan RawEvent
	done    chan struct{}
}

func newPlatformSource() EventSource {
	return &EvdevSource{fd: -1}
}

// NewEvdevSource creates a Linux keyboard event source.
func NewEvdevSource() *EvdevSource {
	return &EvdevSource{fd: -1}
}

// Available checks whether a keyboard device can be opened.
func (e *EvdevSource) Available() (bool, string) {
	devices, err := findKeyboardDevices()
	if err != nil {
		return false, fmt.Sprintf("cannot enumerate input devices: %v", err)
	}
	if len(devices) == 0 {
		return false, "no keyboard devices found"
	}
	for _, dev := range devices {
		fd, err := unix.Open(dev, unix.O_RDONLY, 0)
		if err == nil {
			unix.Close(fd)
			return true, fmt.Sprintf("found keyboard device: %s", dev)
		}
	}
	return false, "cannot read keyboard devices (need 'input' group or root)"
}

// Start opens the first readable keyboard device and begins delivery.
func (e *EvdevSource) Start(ctx context.Context) (<-chan RawEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil, ErrAlreadyRunning
	}

	devices, err := findKeyboardDevices()
	if err != nil {
		return nil, fmt.Errorf("enumerate input devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNotAvailable
	}

	fd := -1
	var openErr error
	for _, dev := range devices {
		fd, openErr = unix.Open(dev, unix.O_RDONLY, 0)
		if openErr == nil {
			break
		}
		fd = -1
	}
	if fd < 0 {
		if openErr == unix.EACCES || openErr == unix.EPERM {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, openErr)
		}
		return nil, fmt.Errorf("open keyboard device: %w", openErr)
	}

	e.fd = fd
	e.ch = make(chan RawEvent, 256)
	e.done = make(chan struct{})
	e.running = true

	go e.readLoop(ctx, fd)
	return e.ch, nil
}

// Stop closes the device, which unblocks the read loop.
func (e *EvdevSource) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	unix.Close(e.fd)
	e.fd = -1
	done := e.done
	e.mu.Unlock()

	<-done
	return nil
}

// inputEventSize matches the Linux input_event struct:
// Timeval + type(u16) + code(u16) + value(s32).
var inputEventSize = binary.Size(unix.Timeval{}) + 8

func (e *EvdevSource) readLoop(ctx context.Context, fd int) {
	defer close(e.done)
	defer close(e.ch)

	tvSize := binary.Size(unix.Timeval{})
	buf := make([]byte, inputEventSize)

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := unix.Read(fd, buf)
		if err != nil || n < inputEventSize {
			if err == unix.EINTR {
				continue
			}
			return
		}

		evType := binary.LittleEndian.Uint16(buf[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(buf[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(buf[tvSize+4 : tvSize+8]))

		if evType != evKey {
			continue
		}
		kind := dynamics.Press
		switch value {
		case evValueRelease:
			kind = dynamics.Release
		case evValuePress, evValueRepeat:
			// Auto-repeat delivers presses, matching what a
			// userspace hook observes while a key is held.
		default:
			continue
		}

		select {
		case e.ch <- RawEvent{Key: keyForCode(code), Kind: kind, Time: time.Now()}:
		case <-ctx.Done():
			return
		}
	}
}

const (
	evKey = 0x01

	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

// findKeyboardDevices parses /proc/bus/input/devices for handlers
// whose key bitmap looks like a full keyboard.
func findKeyboardDevices() ([]string, error) {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var devices []string
	var currentHandler string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "H: Handlers=") {
			currentHandler = ""
			for _, part := range strings.Fields(line) {
				if strings.HasPrefix(part, "event") {
					currentHandler = "/dev/input/" + part
				}
			}
		}

		if strings.HasPrefix(line, "B: KEY=") {
			// A real keyboard reports a wide key bitmap; mice and
			// buttons report a short one.
			bitmap := strings.TrimPrefix(line, "B: KEY=")
			if currentHandler != "" && len(strings.Fields(bitmap)) > 4 {
				devices = append(devices, currentHandler)
			}
		}
	}
	return devices, scanner.Err()
}

// evdev key codes (input-event-codes.h) for keys the filter and
// metrics care about, plus the printable main block.
var evdevKeys = map[uint16]dynamics.Key{
	1:   dynamics.KeyEscape,
	14:  dynamics.KeyBackspace,
	15:  dynamics.KeyTab,
	28:  dynamics.KeyEnter,
	29:  dynamics.KeyCtrlLeft,
	42:  dynamics.KeyShiftLeft,
	54:  dynamics.KeyShiftRight,
	56:  dynamics.KeyAltLeft,
	57:  dynamics.KeySpace,
	97:  dynamics.KeyCtrlRight,
	100: dynamics.KeyAltRight,
	103: dynamics.KeyUp,
	105: dynamics.KeyLeft,
	106: dynamics.KeyRight,
	108: dynamics.KeyDown,
	111: dynamics.KeyDelete,

	2: "1", 3: "2", 4: "3", 5: "4", 6: "5",
	7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	12: "-", 13: "=",
	16: "q", 17: "w", 18: "e", 19: "r", 20: "t",
	21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	26: "[", 27: "]", 43: "\\",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g",
	35: "h", 36: "j", 37: "k", 38: "l", 39: ";", 40: "'", 41: "`",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b",
	49: "n", 50: "m", 51: ",", 52: ".", 53: "/",
}

// keyForCode maps an evdev code to a key identity. Unmapped codes get
// a stable synthetic identity so they still count as ordinary keys.
func keyForCode(code uint16) dynamics.Key {
	if k, ok := evdevKeys[code]; ok {
		return k
	}
	return dynamics.Key(fmt.Sprintf("key_%d", code))
}
