// internal/input/modbus/builder.go
package modbus

import (
	"errors"
	"time"

	"github.com/tamzrod/ffslot/internal/config"
)

// Build constructs a Source from appliance config.
// The first client is made immediately so a bad endpoint fails fast at
// startup; after that the source reconnects on its own.
func Build(c *config.ModbusInputConfig) (*Source, error) {
	if c == nil {
		return nil, errors.New("input modbus: config required")
	}

	factory := Dial(Config{
		Endpoint: c.Endpoint,
		Device:   c.Device,
		Baud:     c.Baud,
		UnitID:   c.UnitID,
		Timeout:  time.Duration(c.TimeoutMs) * time.Millisecond,
	})

	r, closer, err := factory()
	if err != nil {
		return nil, err
	}

	s, err := NewSource(c.Address, factory)
	if err != nil {
		closer.Close()
		return nil, err
	}
	s.reader, s.closer = r, closer
	return s, nil
}
