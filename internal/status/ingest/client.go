// internal/status/ingest/client.go
package ingest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magicHi byte = 0x52 // 'R'
	magicLo byte = 0x49 // 'I'

	versionV1 byte = 0x01

	// Status blocks always land in the holding register area.
	areaHolding byte = 3

	headerLen = 10

	respOK       byte = 0x00
	respRejected byte = 0x01
)

var ErrRejected = errors.New("status ingest: rejected")

// EndpointClient sends status runs as Raw Ingest v1 packets.
// Stateless: one packet per connection.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	unitID   uint8
	base     uint16
}

// Config locates the block: registers land at Base+offset on UnitID.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	UnitID   uint8
	Base     uint16
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("status ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		unitID:   cfg.UnitID,
		base:     cfg.Base,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteBlock satisfies status.Client.
func (c *EndpointClient) WriteBlock(offset uint16, regs []uint16) error {
	pkt := buildPacket(c.unitID, c.base+offset, regs)

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("status ingest: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeAll(conn, pkt); err != nil {
		return fmt.Errorf("status ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("status ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("status ingest: unknown status 0x%02x", resp[0])
	}
}

// ---- packet ----
//
// 0-1  magic "RI"
// 2    version
// 3    area
// 4-5  unit id
// 6-7  address
// 8-9  register count
// 10+  registers, big-endian

func buildPacket(unitID uint8, addr uint16, regs []uint16) []byte {
	pkt := make([]byte, headerLen, headerLen+2*len(regs))

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	pkt[3] = areaHolding

	putU16(pkt[4:6], uint16(unitID))
	putU16(pkt[6:8], addr)
	putU16(pkt[8:10], uint16(len(regs)))

	for _, r := range regs {
		pkt = append(pkt, byte(r>>8), byte(r))
	}
	return pkt
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
