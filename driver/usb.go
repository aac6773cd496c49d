package driver

import (
	"context"

	usb "github.com/daedaluz/gousb"
	"github.com/go-ant/antcore/pkg"
)

// Known Dynastream/Garmin ANT USB stick identifiers.
const (
	idVendorANT   = 0x0FCF
	idProductUSB2 = 0x1008 // ANTUSB2 stick
	idProductUSB3 = 0x1009 // ANTUSB-m stick
)

const (
	transferTypeBulk   = 0x02
	endpointDirectIn   = 0x80
	defaultIOTimeoutMS = 1000
)

// USBDriver talks to an ANT USB stick over a bulk IN/OUT endpoint pair,
// using github.com/daedaluz/gousb as the underlying Linux USB backend.
type USBDriver struct {
	dev         *usb.Device
	iface       uint32
	epIn, epOut uint8
	detached    bool
}

// NewUSBDriver is a [Factory]: it enumerates the USB bus for a known ANT
// stick VID/PID and, if one is present, returns an unopened [USBDriver]
// for it.
func NewUSBDriver() (Driver, bool) {
	devices, err := usb.FindDevices(func(d *usb.Device) bool {
		desc := d.GetDeviceDescriptor()
		if desc.IDVendor != idVendorANT {
			return false
		}
		return desc.IDProduct == idProductUSB2 || desc.IDProduct == idProductUSB3
	})
	if err != nil || len(devices) == 0 {
		return nil, false
	}
	return &USBDriver{dev: devices[0]}, true
}

// Open claims the device's first bulk interface, detaching a conflicting
// kernel driver if one holds it, and locates the bulk IN/OUT endpoint
// pair.
func (d *USBDriver) Open(ctx context.Context) error {
	if err := d.dev.Open(); err != nil {
		return pkg.ErrDriverNotFound
	}

	if driverName, err := d.dev.GetDriver(d.iface); err == nil && driverName != "" {
		if err := d.dev.DetachKernel(d.iface); err == nil {
			d.detached = true
		}
	}

	if err := d.dev.SetConfiguration(1); err != nil {
		pkg.LogWarn(pkg.ComponentDriver, "set configuration failed", "error", err)
	}

	epIn, epOut, ok := findBulkEndpoints(d.dev)
	if !ok {
		d.Close()
		return pkg.ErrDriverNotFound
	}
	d.epIn, d.epOut = epIn, epOut

	pkg.LogInfo(pkg.ComponentDriver, "usb driver opened",
		"bus", d.dev.BusNumber, "device", d.dev.DeviceNumber,
		"epIn", d.epIn, "epOut", d.epOut)
	return nil
}

// findBulkEndpoints walks the device's flattened descriptor list (as
// produced by gousb's sysfs parser) looking for the first bulk IN and
// bulk OUT endpoint descriptors.
func findBulkEndpoints(dev *usb.Device) (epIn, epOut uint8, ok bool) {
	var foundIn, foundOut bool
	for _, raw := range dev.Descriptors {
		ep, isEndpoint := raw.(*usb.EndpointDescriptor)
		if !isEndpoint {
			continue
		}
		if ep.BmAttributes&0x03 != transferTypeBulk {
			continue
		}
		if ep.BEndpointAddress&endpointDirectIn != 0 {
			if !foundIn {
				epIn = ep.BEndpointAddress
				foundIn = true
			}
		} else {
			if !foundOut {
				epOut = ep.BEndpointAddress
				foundOut = true
			}
		}
	}
	return epIn, epOut, foundIn && foundOut
}

// Read performs a bulk IN transfer on the module's IN endpoint.
func (d *USBDriver) Read(ctx context.Context, buf []byte) (int, error) {
	n, err := d.dev.BulkTimeout(d.epIn, buf, defaultIOTimeoutMS)
	if err != nil {
		return n, err
	}
	return n, nil
}

// Write performs a bulk OUT transfer on the module's OUT endpoint.
func (d *USBDriver) Write(ctx context.Context, data []byte) (int, error) {
	n, err := d.dev.BulkTimeout(d.epOut, data, defaultIOTimeoutMS)
	if err != nil {
		return n, pkg.ErrDriverTimeout
	}
	return n, nil
}

// Close releases the device, reattaching the kernel driver if this driver
// detached one.
func (d *USBDriver) Close() error {
	if d.detached {
		_ = d.dev.AttachKernel(d.iface)
		d.detached = false
	}
	if !d.dev.IsOpen() {
		return nil
	}
	return d.dev.Close()
}
