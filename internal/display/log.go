// internal/display/log.go
package display

import (
	"log"

	"github.com/tamzrod/ffslot/internal/fault"
)

// Log writes each distinct view to the standard logger.
type Log struct {
	last  View
	shown bool
}

func NewLog() *Log { return &Log{} }

func (l *Log) Show(v View) error {
	if l.shown && v == l.last {
		return nil
	}
	l.last, l.shown = v, true

	switch v.Health {
	case HealthError:
		log.Printf("display: %s", fault.Label(v.Code))
	case HealthEjected:
		log.Printf("display: ejected (slot=%d name=%q)", v.Nr, v.Label())
	default:
		log.Printf("display: %03d/%03d %s (state=%s depth=%d)", v.Nr, v.Max, v.Label(), v.Health, v.Depth)
	}
	return nil
}
