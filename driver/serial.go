package driver

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/go-ant/antcore/pkg"
)

const (
	usbSerialDevicesPath = "/sys/bus/usb-serial/devices"
	idVendorSerial       = 0x0FCF
	idProductSerial      = 0x1004
	serialBaud           = unix.B115200
)

// SerialDriver talks to an ANT stick's CDC-serial virtual COM port,
// grounded in the original driver's /sys/bus/usb-serial/devices scan and
// 115200 8N1 raw-mode configuration.
type SerialDriver struct {
	path string
	fd   int
}

// NewSerialDriver is a [Factory]: it scans for a USB-serial device whose
// parent USB device reports the ANT stick's VID/PID and, if found, returns
// an unopened [SerialDriver] for it.
func NewSerialDriver() (Driver, bool) {
	path, ok := findSerialDevice()
	if !ok {
		return nil, false
	}
	return &SerialDriver{path: path, fd: -1}, true
}

func findSerialDevice() (string, bool) {
	entries, err := os.ReadDir(usbSerialDevicesPath)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		devPath, err := filepath.EvalSymlinks(filepath.Join(usbSerialDevicesPath, entry.Name()))
		if err != nil {
			continue
		}
		usbDevDir := filepath.Join(devPath, "..", "..")
		vendor, verr := readHexAttr(filepath.Join(usbDevDir, "idVendor"))
		product, perr := readHexAttr(filepath.Join(usbDevDir, "idProduct"))
		if verr != nil || perr != nil {
			continue
		}
		if vendor == idVendorSerial && product == idProductSerial {
			return filepath.Join("/dev", entry.Name()), true
		}
	}
	return "", false
}

func readHexAttr(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 16, 32)
}

// Open opens the serial device and configures it for raw-mode 115200 8N1
// communication with no flow control.
func (d *SerialDriver) Open(ctx context.Context) error {
	fd, err := unix.Open(d.path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return pkg.ErrDriverNotFound
	}
	d.fd = fd

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		d.Close()
		return err
	}

	// cfmakeraw equivalent: disable all input/output processing, line
	// editing, and signal generation, and select 8N1 with flow control
	// off.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		d.Close()
		return err
	}
	if err := setSpeed(fd, serialBaud); err != nil {
		d.Close()
		return err
	}

	pkg.LogInfo(pkg.ComponentDriver, "serial driver opened", "path", d.path)
	return nil
}

func setSpeed(fd int, speed uint32) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Ispeed = speed
	t.Ospeed = speed
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

// Read reads whatever bytes are currently available. A read timeout
// configured via VMIN/VTIME at Open time means a zero-length, nil-error
// result is a legal "nothing arrived yet" response.
func (d *SerialDriver) Read(ctx context.Context, buf []byte) (int, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Write writes the given bytes to the serial port.
func (d *SerialDriver) Write(ctx context.Context, data []byte) (int, error) {
	n, err := unix.Write(d.fd, data)
	if err != nil {
		return n, pkg.ErrDriverTimeout
	}
	return n, nil
}

// Close closes the serial file descriptor.
func (d *SerialDriver) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
