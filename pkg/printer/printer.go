package printer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Printer is the interface for sending raw ESC/POS data to a thermal printer.
type Printer interface {
	// Print sends raw ESC/POS bytes to the printer.
	Print(data []byte) error
	// Close releases the printer connection/handle.
	Close() error
	// IsConnected returns true if the printer can currently accept jobs.
	IsConnected() bool
}

// Supported printer types.
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeFile    = "file"
	TypeNone    = "none"
)

// Config selects and addresses a printer.
type Config struct {
	Type    string
	USBPath string
	Address string
	// FilePath receives spooled jobs for the "file" type.
	FilePath string
}

// --- USB Printer (writes to a device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (raw TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address:      address,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Writer Printer (spools jobs to any io.Writer, e.g. a file) ---

type writerPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewWriterPrinter creates a printer that appends every job to w.
func NewWriterPrinter(w io.Writer) Printer {
	p := &writerPrinter{w: w}
	if c, ok := w.(io.Closer); ok {
		p.closer = c
	}
	return p
}

func (p *writerPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(data); err != nil {
		return fmt.Errorf("printer: spool job: %w", err)
	}
	return nil
}

func (p *writerPrinter) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func (p *writerPrinter) IsConnected() bool { return true }

// --- Null Printer (no-op, used when no printer is configured) ---

type nullPrinter struct{}

// ErrNotConfigured is returned by the null printer on every job.
var ErrNotConfigured = errors.New("printer: no printer configured")

// NewNullPrinter creates a printer for environments without hardware.
// Every job fails with ErrNotConfigured so callers can surface it.
func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print(data []byte) error { return ErrNotConfigured }

func (p *nullPrinter) Close() error { return nil }

func (p *nullPrinter) IsConnected() bool { return false }

// New creates the Printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case TypeUSB:
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(cfg.USBPath), nil
	case TypeNetwork:
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(cfg.Address), nil
	case TypeFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("printer: file path is required for file printer type")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("printer: open spool file %s: %w", cfg.FilePath, err)
		}
		return NewWriterPrinter(f), nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, file or none)", cfg.Type)
	}
}
