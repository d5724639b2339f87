// internal/status/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Writer is the one Modbus operation the block needs (FC 16).
type Writer interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Factory makes a new connected Writer. ONE attempt per call.
type Factory func() (Writer, io.Closer, error)

type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// Block is one status block of size registers at a fixed holding
// register address. A failed write drops the client; the next write
// dials again.
type Block struct {
	base    uint16
	size    int
	factory Factory

	mu     sync.Mutex
	w      Writer
	closer io.Closer
}

func NewBlock(base uint16, size int, factory Factory) (*Block, error) {
	if factory == nil {
		return nil, errors.New("status modbus: factory required")
	}
	if size <= 0 || int(base)+size > 0x10000 {
		return nil, fmt.Errorf("status modbus: block %d+%d out of range", base, size)
	}
	return &Block{base: base, size: size, factory: factory}, nil
}

// Connect dials now so a bad endpoint fails at startup.
func (b *Block) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connect()
}

// WriteBlock writes regs at offset registers into the block.
func (b *Block) WriteBlock(offset uint16, regs []uint16) error {
	if len(regs) == 0 || int(offset)+len(regs) > b.size {
		return fmt.Errorf("status modbus: write %d+%d outside block of %d", offset, len(regs), b.size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.connect(); err != nil {
		return err
	}
	if _, err := b.w.WriteMultipleRegisters(b.base+offset, uint16(len(regs)), packRegisters(regs)); err != nil {
		b.drop()
		return fmt.Errorf("status modbus: write: %w", err)
	}
	return nil
}

func (b *Block) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drop()
}

func (b *Block) connect() error {
	if b.w != nil {
		return nil
	}
	w, c, err := b.factory()
	if err != nil {
		return fmt.Errorf("status modbus: connect: %w", err)
	}
	b.w, b.closer = w, c
	return nil
}

func (b *Block) drop() error {
	var err error
	if b.closer != nil {
		err = b.closer.Close()
	}
	b.w, b.closer = nil, nil
	return err
}

// Dial returns a TCP factory.
func Dial(cfg Config) Factory {
	return func() (Writer, io.Closer, error) {
		if cfg.Endpoint == "" {
			return nil, nil, errors.New("endpoint required")
		}
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, nil, err
		}
		return modbus.NewClient(h), h, nil
	}
}

// packRegisters lays registers out big-endian.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, 0, 2*len(regs))
	for _, r := range regs {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}
