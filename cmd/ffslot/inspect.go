// cmd/ffslot/inspect.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/image"
	"github.com/tamzrod/ffslot/internal/input"
	"github.com/tamzrod/ffslot/internal/nav"
	"github.com/tamzrod/ffslot/internal/session"
	"github.com/tamzrod/ffslot/internal/volume"
)

// openSession initializes a session with no buttons and no display.
func openSession(ctx context.Context, rf *rootFlags) (*session.Session, error) {
	cfg, err := loadConfig(rf)
	if err != nil {
		return nil, err
	}
	vol, err := volume.OpenOS(cfg.Volume.Path)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(session.Deps{
		Vol:     vol,
		Nav:     cfg.Navigation,
		Images:  image.ByExtension(cfg.Volume.Extensions),
		Buttons: &input.State{},
	})
	if err != nil {
		return nil, err
	}
	if err := sess.Initialize(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func newScanCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List the valid slots of the starting folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			list, err := sess.Slots()
			if err != nil {
				return err
			}

			cur := sess.View().Nr
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "\tSLOT\tNAME\tTYPE\tSIZE\n")
			for _, l := range list {
				mark := ""
				if l.Nr == cur {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%03d\t%s\t%s\t%d\n", mark, l.Nr, l.Slot.Name, l.Slot.Type, l.Slot.Size)
			}
			fmt.Fprintf(tw, "\t\t(%d slots, backend %s)\t\t\n", len(list), sess.Backend())
			return tw.Flush()
		},
	}
}

func newShowCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), rf)
			if err != nil {
				return err
			}
			printSelection(sess)
			return nil
		},
	}
}

func newSelectCmd(rf *rootFlags) *cobra.Command {
	var next, prev int

	c := &cobra.Command{
		Use:   "select [name-prefix]",
		Short: "Change and persist the selection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && next == 0 && prev == 0 {
				return errors.New("select: give a name prefix, --next or --prev")
			}
			sess, err := openSession(cmd.Context(), rf)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				ok, err := sess.SelectByName(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("select: no slot matches %q", args[0])
				}
			}
			for i := 0; i < next; i++ {
				sess.Advance(nav.Next)
			}
			for i := 0; i < prev; i++ {
				sess.Advance(nav.Prev)
			}

			if err := sess.Commit(); err != nil {
				return err
			}
			printSelection(sess)
			return nil
		},
	}
	c.Flags().IntVar(&next, "next", 0, "step forward N valid slots")
	c.Flags().IntVar(&prev, "prev", 0, "step back N valid slots")
	return c
}

func printSelection(sess *session.Session) {
	v := sess.View()
	fmt.Printf("backend:  %s\n", sess.Backend())
	fmt.Printf("slot:     %03d/%03d (depth %d)\n", v.Nr, v.Max, v.Depth)
	fmt.Printf("name:     %s\n", v.Label())
	fmt.Printf("size:     %d\n", v.Slot.Size)
	fmt.Printf("ejected:  %v\n", sess.Ejected())
	if cfg := sess.Config(); cfg.ImageOnStartup != config.ImageLast {
		fmt.Printf("note:     image-on-startup=%s, selection is not persisted\n", cfg.ImageOnStartup)
	}
}
