package scpi

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

// USBTMC message IDs.
const (
	msgDevDepOut       = 1
	msgRequestDevDepIn = 2

	usbtmcHeaderSize = 12
	attrEOM          = 0x01
)

// USBTMC is a transport over the USB Test & Measurement Class bulk endpoints.
type USBTMC struct {
	mu        sync.Mutex
	ctx       *gousb.Context
	dev       *gousb.Device
	done      func()
	in        *gousb.InEndpoint
	out       *gousb.OutEndpoint
	tag       byte
	timeout   time.Duration
	chunkSize int
	closed    bool
	resource  USBResource
}

// USBResource identifies a USB instrument, as in USB0::0x1AB1::0x04B0::DS4A1234::INSTR.
type USBResource struct {
	Vendor  uint16
	Product uint16
	Serial  string
}

func (r USBResource) String() string {
	return fmt.Sprintf("USB0::0x%04X::0x%04X::%s::INSTR", r.Vendor, r.Product, r.Serial)
}

// ParseUSBResource parses a USB resource string. The serial number is optional.
func ParseUSBResource(resource string) (USBResource, error) {
	parts := strings.Split(resource, "::")
	if len(parts) < 3 || !strings.HasPrefix(parts[0], "USB") {
		return USBResource{}, fmt.Errorf("%w: %q", ErrInvalidResource, resource)
	}
	vid, err := strconv.ParseUint(parts[1], 0, 16)
	if err != nil {
		return USBResource{}, fmt.Errorf("%w: vendor id %q", ErrInvalidResource, parts[1])
	}
	pid, err := strconv.ParseUint(parts[2], 0, 16)
	if err != nil {
		return USBResource{}, fmt.Errorf("%w: product id %q", ErrInvalidResource, parts[2])
	}
	r := USBResource{Vendor: uint16(vid), Product: uint16(pid)}
	if len(parts) >= 4 && parts[3] != "INSTR" {
		r.Serial = parts[3]
	}
	return r, nil
}

// OpenUSBTMC opens the USB instrument named by resource.
func OpenUSBTMC(resource string, timeout time.Duration, chunkSize int) (*USBTMC, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if chunkSize < 64 {
		chunkSize = DefaultChunkSize
	}
	res, err := ParseUSBResource(resource)
	if err != nil {
		return nil, err
	}

	ctx := gousb.NewContext()
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == res.Vendor && uint16(desc.Product) == res.Product
	})
	var dev *gousb.Device
	for _, d := range devs {
		if dev == nil && matchSerial(d, res.Serial) {
			dev = d
			continue
		}
		d.Close()
	}
	if dev == nil {
		ctx.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to open USB device %s: %w", resource, err)
		}
		return nil, fmt.Errorf("USB device %s not found", resource)
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to detach kernel driver from %s: %w", resource, err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to claim interface of %s: %w", resource, err)
	}

	t := &USBTMC{
		ctx:       ctx,
		dev:       dev,
		done:      done,
		timeout:   timeout,
		chunkSize: chunkSize,
		resource:  res,
	}
	if err := t.openEndpoints(intf); err != nil {
		t.release()
		return nil, fmt.Errorf("failed to open endpoints of %s: %w", resource, err)
	}

	return t, nil
}

func matchSerial(d *gousb.Device, serial string) bool {
	if serial == "" {
		return true
	}
	sn, err := d.SerialNumber()
	return err == nil && sn == serial
}

func (t *USBTMC) openEndpoints(intf *gousb.Interface) error {
	inNum, outNum := -1, -1
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn {
			inNum = ep.Number
		} else {
			outNum = ep.Number
		}
	}
	if inNum < 0 || outNum < 0 {
		return errors.New("no bulk endpoint pair")
	}

	var err error
	if t.in, err = intf.InEndpoint(inNum); err != nil {
		return err
	}
	if t.out, err = intf.OutEndpoint(outNum); err != nil {
		return err
	}
	return nil
}

// Resource returns the opened device identity.
func (t *USBTMC) Resource() USBResource {
	return t.resource
}

func (t *USBTMC) Write(cmd string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.write(cmd)
}

func (t *USBTMC) Query(cmd string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.write(cmd); err != nil {
		return nil, err
	}
	reply, err := t.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read reply to %q: %w", cmd, err)
	}
	if n := len(reply); n > 0 && reply[n-1] == '\n' {
		reply = reply[:n-1]
	}
	return reply, nil
}

func (t *USBTMC) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.release()
}

func (t *USBTMC) release() error {
	if t.done != nil {
		t.done()
	}
	var err error
	if t.dev != nil {
		err = t.dev.Close()
	}
	if cerr := t.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}

func (t *USBTMC) nextTag() byte {
	t.tag++
	if t.tag == 0 {
		t.tag = 1
	}
	return t.tag
}

func (t *USBTMC) header(msgID byte, size int, attr byte) []byte {
	tag := t.nextTag()
	h := make([]byte, usbtmcHeaderSize)
	h[0] = msgID
	h[1] = tag
	h[2] = ^tag
	binary.LittleEndian.PutUint32(h[4:8], uint32(size))
	h[8] = attr
	return h
}

func (t *USBTMC) write(cmd string) error {
	if t.closed {
		return ErrClosed
	}
	payload := []byte(cmd + "\n")
	msg := append(t.header(msgDevDepOut, len(payload), attrEOM), payload...)
	// bulk-out transfers are padded to a multiple of 4 bytes
	for len(msg)%4 != 0 {
		msg = append(msg, 0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if _, err := t.out.WriteContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, mapUSBErr(err))
	}
	return nil
}

func (t *USBTMC) read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	var reply []byte
	buf := make([]byte, t.chunkSize+usbtmcHeaderSize+3)
	for {
		req := t.header(msgRequestDevDepIn, t.chunkSize, 0)
		if _, err := t.out.WriteContext(ctx, req); err != nil {
			return nil, mapUSBErr(err)
		}

		n, err := t.in.ReadContext(ctx, buf)
		if err != nil {
			return nil, mapUSBErr(err)
		}
		if n < usbtmcHeaderSize || buf[0] != msgRequestDevDepIn || buf[1] != req[1] {
			return nil, fmt.Errorf("unexpected USBTMC response header % x", buf[:min(n, usbtmcHeaderSize)])
		}
		size := int(binary.LittleEndian.Uint32(buf[4:8]))
		eom := buf[8]&attrEOM != 0

		data := buf[usbtmcHeaderSize:n]
		for len(data) < size {
			more := make([]byte, t.chunkSize)
			m, err := t.in.ReadContext(ctx, more)
			if err != nil {
				return nil, mapUSBErr(err)
			}
			data = append(data, more[:m]...)
		}
		reply = append(reply, data[:size]...)

		if eom {
			return reply, nil
		}
	}
}

func mapUSBErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gousb.ErrorTimeout) ||
		errors.Is(err, gousb.TransferTimedOut) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
