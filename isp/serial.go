package isp

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
)

// Serial link parameters of the boot ROM.
const (
	// BaudRate is the fixed ISP link speed
	BaudRate = 2_000_000

	// ReadTimeout bounds every transport read
	ReadTimeout = 1 * time.Second
)

// OpenPort opens the named serial port with the ISP link settings: 2 Mbaud,
// 8 data bits, no parity, one stop bit, 1 second read timeout. The returned
// port satisfies the Session transport interface, including input draining.
func OpenPort(name string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return port, nil
}

// ListPorts returns the available serial port names, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}
