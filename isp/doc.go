// Package isp drives the Bouffalo serial ISP bootloader: device handshake,
// strictly ordered request/response exchange, and the full flash
// provisioning sequence.
//
// # Overview
//
// A Session owns one transport (usually a serial port) for its entire
// lifetime. After the handshake it exposes one blocking call per ISP
// command, plus Flash, which runs the whole provisioning sequence:
//
//	GetBootInfo → SetFlashPin → ReadFlashID → parameter table lookup →
//	SetFlashConfig → EraseFlash → chunked WriteFlash loop
//
// # Basic Usage
//
//	port, err := isp.OpenPort("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	sess := isp.New(port)
//	if err := sess.Handshake(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sess.Flash(image); err != nil {
//	    log.Fatal(err)
//	}
//
// Flash performs the handshake itself if it has not happened yet.
//
// # Error Handling
//
// Any non-OK device status or transport error aborts the running command
// and surfaces to the caller; the session never retries on its own. A
// Pending status is an immediate error by design: polling policy, if any,
// belongs to the caller.
//
// There is no cancellation below a command boundary. Once Flash has begun,
// stopping the process may leave the target flash partially erased or
// written.
package isp
