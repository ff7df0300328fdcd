package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feidao/event"
	"github.com/spf13/cobra"
)

type Emit struct {
	cmd *cobra.Command

	mainopts   *Options
	bubbles    bool
	cancelable bool
}

func NewEmit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit <type> [key=value]...",
		Short: "publish one event",
		Long: `
Publishes one event of the given type. Every key=value argument becomes a
field of the event. Values that parse as JSON keep their JSON type,
everything else is sent as a string.
`,
		Args: cobra.MinimumNArgs(1),
	}

	c := &Emit{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(cmd, args) }
	flags := cmd.Flags()
	flags.BoolVar(&c.bubbles, "bubbles", false, "mark the event as bubbling")
	flags.BoolVar(&c.cancelable, "cancelable", false, "mark the event as cancelable")
	return cmd
}

func (c *Emit) Run(cmd *cobra.Command, args []string) error {
	fields, err := ParseFields(args[1:])
	if err != nil {
		return err
	}
	if err := c.mainopts.resolve(cmd); err != nil {
		return err
	}

	ee, err := c.mainopts.Connect()
	if err != nil {
		return err
	}
	defer ee.Close(context.Background())

	obj := event.NewObject(args[0], fields)
	obj.Bubbles, obj.Cancelable = c.bubbles, c.cancelable
	if _, err := event.Emit(ee, obj); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "emitted %s\n", args[0])
	return nil
}

// ParseFields turns key=value arguments into event fields.
func ParseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", arg)
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			fields[k] = parsed
		} else {
			fields[k] = v
		}
	}
	return fields, nil
}
