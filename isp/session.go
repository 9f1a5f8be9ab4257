package isp

import (
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-blri/protocol"
)

// Wire constants of the handshake and write loop.
const (
	// ChunkSize is the flash write granularity; one WriteFlash command
	// carries at most this much data
	ChunkSize = 4096

	// MaxImageSize is the largest image the write protocol can address
	MaxImageSize = 0xFFFF

	// syncTrainLength is the number of 0x55 bytes sent for UART
	// auto-bit-rate detection
	syncTrainLength = 300
)

// resetMarker kicks a USB-CDC attached device out of the running firmware
// and into the boot ROM.
var resetMarker = []byte("BOUFFALOLAB5555RESET\x00\x01")

// handshakePacket is the fixed packet that puts the boot ROM into ISP mode
// after the sync training sequence.
var handshakePacket = []byte{
	0x50, 0x00, 0x08, 0x00, 0x38, 0xF0, 0x00, 0x20, 0x00, 0x00, 0x00, 0x18,
}

// Device-side settle times between handshake steps.
const (
	resetSettleDelay     = 50 * time.Millisecond
	syncSettleDelay      = 300 * time.Millisecond
	handshakeSettleDelay = 100 * time.Millisecond
)

// inputDrainer is implemented by transports that can discard buffered
// input, such as go.bug.st/serial ports. Stale echoes of the handshake
// bytes must not be mistaken for a command response.
type inputDrainer interface {
	ResetInputBuffer() error
}

// Session drives the ISP protocol over one exclusively owned transport.
// All exchanges are strictly ordered: a new request is never written before
// the previous response has been fully consumed.
//
// Session is not safe for concurrent use; the protocol itself is strictly
// sequential.
type Session struct {
	transport io.ReadWriter
	config    Config
	ready     bool
}

// New creates a Session on the given transport. The transport must
// implement io.ReadWriter; serial ports from OpenPort qualify, as does any
// in-memory fake for testing.
//
// The session starts disconnected: call Handshake (or Flash, which does it
// on demand) before issuing commands.
func New(transport io.ReadWriter, opts ...Option) *Session {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		transport: transport,
		config:    cfg,
	}
}

// Handshake resets the device into the boot ROM and synchronizes the UART:
// reset marker, sync training sequence, handshake packet, each followed by
// the settle time the ROM needs. Buffered input is discarded afterwards so
// that echoes of these bytes never masquerade as a response.
//
// Handshake must complete before any command is issued.
func (s *Session) Handshake() error {
	if _, err := s.transport.Write(resetMarker); err != nil {
		return fmt.Errorf("send reset marker: %w", err)
	}
	time.Sleep(resetSettleDelay)

	train := make([]byte, syncTrainLength)
	for i := range train {
		train[i] = 0x55
	}
	if _, err := s.transport.Write(train); err != nil {
		return fmt.Errorf("send sync training: %w", err)
	}
	time.Sleep(syncSettleDelay)

	if _, err := s.transport.Write(handshakePacket); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}
	time.Sleep(handshakeSettleDelay)

	if d, ok := s.transport.(inputDrainer); ok {
		if err := d.ResetInputBuffer(); err != nil {
			return fmt.Errorf("clear input buffer: %w", err)
		}
	}

	s.ready = true
	s.logDebug("handshake complete")
	return nil
}

// GetBootInfo queries boot ROM version, chip id and flash info.
func (s *Session) GetBootInfo() (*protocol.BootInfo, error) {
	payload, err := s.roundTrip("get boot info", protocol.BuildGetBootInfoCmd(), true)
	if err != nil {
		return nil, err
	}
	return protocol.ParseBootInfoResponse(payload)
}

// SetFlashPin selects the SPI flash pin configuration, normally the value
// derived from BootInfo.FlashPin.
func (s *Session) SetFlashPin(pin uint32) error {
	_, err := s.roundTrip("set flash pin", protocol.BuildSetFlashPinCmd(pin), false)
	return err
}

// ReadFlashID reads the 3-byte JEDEC id of the attached SPI flash.
func (s *Session) ReadFlashID() (protocol.FlashID, error) {
	payload, err := s.roundTrip("read flash id", protocol.BuildReadFlashIDCmd(), true)
	if err != nil {
		return protocol.FlashID{}, err
	}
	return protocol.ParseFlashIDResponse(payload)
}

// SetFlashConfig sends the vendor SPI flash parameter struct for the chip
// identified by ReadFlashID.
func (s *Session) SetFlashConfig(pin uint32, config []byte) error {
	_, err := s.roundTrip("set flash config", protocol.BuildSetFlashConfigCmd(pin, config), false)
	return err
}

// EraseFlash erases the flash address range [start, end].
func (s *Session) EraseFlash(start, end uint32) error {
	_, err := s.roundTrip("erase flash", protocol.BuildEraseFlashCmd(start, end), false)
	return err
}

// WriteFlash programs one chunk of data at the given flash offset. Callers
// normally use Flash, which chunks the whole image.
func (s *Session) WriteFlash(offset uint32, data []byte) error {
	_, err := s.roundTrip("write flash", protocol.BuildWriteFlashCmd(offset, data), false)
	return err
}

// Flash runs the full provisioning sequence for image at flash offset 0:
//
//	GetBootInfo → SetFlashPin → ReadFlashID → table lookup →
//	SetFlashConfig → EraseFlash → sequential 4096-byte WriteFlash loop
//
// Any failing stage aborts the sequence; no partial-erase or partial-write
// recovery is attempted. Images larger than MaxImageSize are rejected
// before anything is written to the transport.
func (s *Session) Flash(image []byte) error {
	if len(image) > MaxImageSize {
		return &ImageTooLargeError{Size: len(image)}
	}

	startTime := time.Now()

	if !s.ready {
		s.reportProgress(Progress{Phase: PhaseHandshake, TotalBytes: len(image)})
		if err := s.Handshake(); err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
	}

	s.reportProgress(Progress{Phase: PhaseIdentify, TotalBytes: len(image)})

	bootInfo, err := s.GetBootInfo()
	if err != nil {
		return fmt.Errorf("get boot info: %w", err)
	}
	s.logInfo("boot info",
		"chip_id", chipIDString(bootInfo.ChipID),
		"flash_info", fmt.Sprintf("%08X", bootInfo.FlashInfoFromBoot),
		"flash_pin", fmt.Sprintf("%02X", bootInfo.FlashPin()),
	)

	pin := bootInfo.FlashPin()
	if err := s.SetFlashPin(pin); err != nil {
		return fmt.Errorf("set flash pin: %w", err)
	}

	flashID, err := s.ReadFlashID()
	if err != nil {
		return fmt.Errorf("read flash id: %w", err)
	}
	s.logInfo("flash id", "id", flashID.String())

	flashConfig, ok := protocol.LookupFlashConfig(flashID)
	if !ok {
		return &UnsupportedFlashError{ID: flashID}
	}

	s.reportProgress(Progress{
		Phase:       PhaseConfigure,
		TotalBytes:  len(image),
		ElapsedTime: time.Since(startTime),
	})
	if err := s.SetFlashConfig(pin, flashConfig); err != nil {
		return fmt.Errorf("set flash config: %w", err)
	}

	s.reportProgress(Progress{
		Phase:       PhaseErase,
		TotalBytes:  len(image),
		ElapsedTime: time.Since(startTime),
	})
	if err := s.EraseFlash(0, uint32(len(image))); err != nil {
		return fmt.Errorf("erase flash: %w", err)
	}

	written := 0
	for written < len(image) {
		n := len(image) - written
		if n > ChunkSize {
			n = ChunkSize
		}
		if err := s.WriteFlash(uint32(written), image[written:written+n]); err != nil {
			return fmt.Errorf("write flash at 0x%x: %w", written, err)
		}
		written += n

		s.reportProgress(Progress{
			Phase:        PhaseWrite,
			BytesWritten: written,
			TotalBytes:   len(image),
			ElapsedTime:  time.Since(startTime),
		})
		s.logDebug("flashing", "written", written, "total", len(image))
	}

	s.reportProgress(Progress{
		Phase:        PhaseComplete,
		BytesWritten: written,
		TotalBytes:   len(image),
		ElapsedTime:  time.Since(startTime),
	})
	s.logInfo("flashing done", "bytes", written, "elapsed", time.Since(startTime).String())

	return nil
}

// roundTrip writes one request packet and consumes its response. The
// configured command delay gives the ROM time to act before the response
// is read.
func (s *Session) roundTrip(command string, packet []byte, payloadExpected bool) ([]byte, error) {
	if !s.ready {
		return nil, &NotReadyError{Command: command}
	}

	if _, err := s.transport.Write(packet); err != nil {
		return nil, fmt.Errorf("%s: write request: %w", command, err)
	}

	if s.config.CommandDelay > 0 {
		time.Sleep(s.config.CommandDelay)
	}

	payload, err := protocol.ReadResponse(s.transport, payloadExpected)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	return payload, nil
}

// chipIDString renders the chip id the way the ROM tooling prints it:
// bytes reversed, upper-case hex.
func chipIDString(id [6]byte) string {
	out := make([]byte, 0, 12)
	for i := len(id) - 1; i >= 0; i-- {
		out = append(out, fmt.Sprintf("%02X", id[i])...)
	}
	return string(out)
}

func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}
