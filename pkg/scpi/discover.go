package scpi

import (
	"fmt"
	"strings"

	"github.com/google/gousb"
	"go.bug.st/serial"
)

// usbtmcSubClass is the USB Test & Measurement interface subclass.
const usbtmcSubClass = 0x03

// Resources lists instrument resource strings: USBTMC devices as USB0::...::INSTR and
// serial ports as ASRL<port>::INSTR. A failure to enumerate one bus does not hide the other.
func Resources() ([]string, error) {
	usb, usbErr := USBResources()
	ports, serialErr := serial.GetPortsList()
	if usbErr != nil && serialErr != nil {
		return nil, fmt.Errorf("failed to list instruments: %v; %w", usbErr, serialErr)
	}

	result := make([]string, 0, len(usb)+len(ports))
	for _, r := range usb {
		result = append(result, r.String())
	}
	for _, name := range ports {
		result = append(result, "ASRL"+name+"::INSTR")
	}
	return result, nil
}

// USBResources lists attached devices exposing a USBTMC interface.
func USBResources() ([]USBResource, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(isUSBTMC)
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	result := make([]USBResource, 0, len(devs))
	for _, d := range devs {
		sn, _ := d.SerialNumber()
		result = append(result, USBResource{
			Vendor:  uint16(d.Desc.Vendor),
			Product: uint16(d.Desc.Product),
			Serial:  sn,
		})
	}
	return result, nil
}

func isUSBTMC(desc *gousb.DeviceDesc) bool {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassApplication && alt.SubClass == usbtmcSubClass {
					return true
				}
			}
		}
	}
	return false
}

// FindUSB returns the only USB resource in resources.
func FindUSB(resources []string) (string, error) {
	var found []string
	for _, r := range resources {
		if strings.HasPrefix(r, "USB") {
			found = append(found, r)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("%w: found %d in %v", ErrNoUniqueResource, len(found), resources)
	}
	return found[0], nil
}
