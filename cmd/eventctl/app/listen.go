package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/feidao/event"
	"github.com/spf13/cobra"
)

type Listen struct {
	cmd *cobra.Command

	mainopts *Options
	count    int
}

func NewListen(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen <type>...",
		Short: "print received events as JSON lines",
		Args:  cobra.MinimumNArgs(1),
	}

	c := &Listen{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(cmd, args) }
	flags := cmd.Flags()
	flags.IntVarP(&c.count, "count", "n", 0, "exit after this many events (0: until interrupted)")
	return cmd
}

func (c *Listen) Run(cmd *cobra.Command, args []string) error {
	if c.count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if err := c.mainopts.resolve(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ee, err := c.mainopts.Connect()
	if err != nil {
		return err
	}
	defer ee.Close(context.Background())

	done := make(chan struct{})
	var closeDone sync.Once
	finish := func() { closeDone.Do(func() { close(done) }) }

	p := &printer{w: cmd.OutOrStdout()}
	var h event.Handle
	if c.count == 1 {
		h, err = event.OnceAll(ee, args, func(ev event.Event) {
			p.print(ev)
			finish()
		})
	} else {
		var seen atomic.Int64
		h, err = event.OnAll(ee, args, func(ev event.Event) {
			p.print(ev)
			if n := seen.Add(1); c.count > 0 && n >= int64(c.count) {
				finish()
			}
		})
	}
	if err != nil {
		return err
	}
	defer h.Destroy()

	if c.mainopts.ready != nil {
		c.mainopts.ready()
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

type printer struct {
	mu sync.Mutex
	w  io.Writer
}

type line struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (p *printer) print(ev event.Event) {
	l := line{Type: ev.EventType()}
	if fc, ok := ev.(event.FieldCarrier); ok {
		l.Fields = fc.Fields()
	}
	data, _ := json.Marshal(l)

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s\n", string(data))
}
