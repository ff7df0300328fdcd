package app

import (
	"github.com/spf13/cobra"
)

type Options struct {
	config    string
	transport string
	url       string
	prefix    string
	codec     string

	// called once listen has subscribed every type
	ready func()
}

// resolve fills the options not given as flags from the configuration.
func (o *Options) resolve(cmd *cobra.Command) error {
	cfg, err := GetConfig(o.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v *string) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}
	set("transport", &o.transport, cfg.Transport)
	set("url", &o.url, cfg.URL)
	set("prefix", &o.prefix, cfg.Prefix)
	set("codec", &o.codec, cfg.Codec)
	return nil
}

func New() *cobra.Command {
	return newCommand(&Options{})
}

func newCommand(opts *Options) *cobra.Command {
	maincmd := &cobra.Command{
		Use:   "eventctl <options> <cmd> <args>",
		Short: "emit and listen to remote events",
		Long: `
This command publishes events to and receives events from a
NATS, Redis or Kafka backed event emitter.
`,
		SilenceUsage:     true,
		TraverseChildren: true,
	}

	flags := maincmd.PersistentFlags()

	flags.StringVarP(&opts.config, "config", "c", "", "config file (default: search for "+configName+")")
	flags.StringVarP(&opts.transport, "transport", "t", "nats", "transport (nats, redis, kafka)")
	flags.StringVarP(&opts.url, "url", "u", "", "broker URL, or comma separated brokers for kafka")
	flags.StringVarP(&opts.prefix, "prefix", "p", "", "channel, subject or topic prefix")
	flags.StringVar(&opts.codec, "codec", "json", "payload codec (json, msgpack, proto)")

	maincmd.AddCommand(NewListen(opts))
	maincmd.AddCommand(NewEmit(opts))
	return maincmd
}
