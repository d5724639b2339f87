// internal/status/builder.go
package status

import (
	"fmt"
	"time"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/status/ingest"
	smodbus "github.com/tamzrod/ffslot/internal/status/modbus"
)

type endpointClient interface {
	Client
	Close() error
}

// Build connects the status endpoint and returns its writer.
// A nil config disables status export.
func Build(c *config.StatusConfig) (*Writer, func() error, error) {
	if c == nil {
		return nil, func() error { return nil }, nil
	}

	cli, err := newClient(c)
	if err != nil {
		return nil, nil, fmt.Errorf("status: %w", err)
	}

	w := NewWriter(Plan{
		Endpoint:   c.Endpoint,
		DeviceName: c.DeviceName,
	}, cli)

	return w, cli.Close, nil
}

func newClient(c *config.StatusConfig) (endpointClient, error) {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond
	// Each device owns a fixed SlotsPerDevice block.
	base := uint32(c.BaseSlot) * SlotsPerDevice
	if base+SlotsPerDevice > 0x10000 {
		return nil, fmt.Errorf("base_slot %d out of register range", c.BaseSlot)
	}

	switch c.Protocol {
	case "ingest":
		return ingest.NewEndpointClient(ingest.Config{
			Endpoint: c.Endpoint,
			Timeout:  timeout,
			UnitID:   c.UnitID,
			Base:     uint16(base),
		})
	case "", "modbus":
		blk, err := smodbus.NewBlock(uint16(base), SlotsPerDevice, smodbus.Dial(smodbus.Config{
			Endpoint: c.Endpoint,
			UnitID:   c.UnitID,
			Timeout:  timeout,
		}))
		if err != nil {
			return nil, err
		}
		// Connect once so a bad endpoint fails at startup.
		if err := blk.Connect(); err != nil {
			return nil, err
		}
		return blk, nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", c.Protocol)
	}
}
