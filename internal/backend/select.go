// internal/backend/select.go
package backend

import (
	"errors"
	"fmt"
	"log"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/hxc"
	"github.com/tamzrod/ffslot/internal/volume"
)

// Select picks the backend once per session from the navigation mode.
// The default mode probes HXCSDFE.CFG at the root and falls back to
// Native when it is absent.
func Select(env *Env) (Backend, error) {
	b, err := pick(env)
	if err != nil {
		return nil, err
	}
	log.Printf("backend: mode=%s (nav-mode=%s cfg-dir=%q)", b.Kind(), env.Nav.NavMode, env.CfgDir)
	return b, nil
}

func pick(env *Env) (Backend, error) {
	switch env.Nav.NavMode {
	case config.NavNative:
		return NewNative(env), nil
	case config.NavIndexed:
		return NewFFIndexed(env), nil
	}

	var (
		hdr    hxc.Header
		handle volume.Handle
	)
	err := env.inDir("", func() error {
		f, err := env.Vol.Open(hxc.FileName, volume.OpenRead)
		if err != nil {
			return err
		}
		defer f.Close()
		handle = f.Handle()
		hdr, err = hxc.ReadHeader(f)
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, volume.ErrDisconnected):
		return nil, fmt.Errorf("backend: %w", err)
	case errors.Is(err, hxc.ErrShortHeader):
		return nil, fault.New(fault.CodeBadHxcSdfe, "short header")
	case notExist(err):
		return NewNative(env), nil
	default:
		return nil, fmt.Errorf("backend: probe %s: %w", hxc.FileName, err)
	}

	if hdr.Indexed() {
		return NewHxcIndexed(env, handle), nil
	}
	return NewHxcSelector(env, handle), nil
}
