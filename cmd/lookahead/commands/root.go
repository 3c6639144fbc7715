package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/lookahead/config"
	"github.com/kbukum/lookahead/util"
	"github.com/kbukum/lookahead/version"
)

const (
	serviceName = "lookahead"
	envPrefix   = "LOOKAHEAD"
)

// Config is the configuration shared by every subcommand.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Iterator             config.IteratorConfig `yaml:"iterator" mapstructure:"iterator"`
}

// ApplyDefaults fills service and iterator defaults.
func (c *Config) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, serviceName)
	c.Version = util.Coalesce(c.Version, version.Get().Short())
	c.ServiceConfig.ApplyDefaults()
	c.Iterator.ApplyDefaults()
}

// Validate checks both sections.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Iterator.Validate()
}

// globalOptions holds the persistent flags.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "lookahead",
		Short: "Read slow or bursty input with a bounded wait",
		Long: `lookahead wraps a blocking producer so that each read waits at most a
configured timeout. When nothing arrives in time a heartbeat is emitted
instead, and the element is delivered by a later read.

Configuration is read from config.yml (./cmd/lookahead, ./config, . or the
OS config directory), a .env file, and LOOKAHEAD_* environment variables,
e.g. LOOKAHEAD_ITERATOR_TIMEOUT=500ms. Flags override all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "path to config.yml")
	flags.StringVar(&opts.envFile, "env-file", "", "path to a .env file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newTailCmd(opts), newDemoCmd(opts), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads the config and applies flags set on cmd over it.
func (o *globalOptions) load(cmd *cobra.Command) (*Config, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	loaderOpts = append(loaderOpts, config.WithEnvPrefix(envPrefix))

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, loaderOpts...); err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	applyIteratorFlags(cmd.Flags(), &cfg.Iterator)
	return cfg, nil
}

// addIteratorFlags registers the flags that override the iterator section.
func addIteratorFlags(flags *pflag.FlagSet) {
	flags.DurationP("timeout", "t", 0, "maximum wait per read (0 waits indefinitely)")
	flags.Bool("reset-on-next", false, "revert the timeout to 0 after every read")
	flags.String("tag", "", "name of the stream in logs and metrics")
	flags.Bool("async", false, "use the context-aware variant")
	flags.Bool("raise-on-error", true, "stop with an error when the source fails")
}

func applyIteratorFlags(flags *pflag.FlagSet, c *config.IteratorConfig) {
	if flags.Changed("timeout") {
		c.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("reset-on-next") {
		c.ResetOnNext, _ = flags.GetBool("reset-on-next")
	}
	if flags.Changed("tag") {
		c.Tag, _ = flags.GetString("tag")
	}
	if flags.Changed("async") {
		c.Async, _ = flags.GetBool("async")
	}
	if flags.Changed("raise-on-error") {
		raise, _ := flags.GetBool("raise-on-error")
		c.RaiseOnError = util.Ptr(raise)
	}
}
