package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lomoval/eventstore/internal/form"
	"github.com/lomoval/eventstore/internal/logger"
	"github.com/lomoval/eventstore/internal/remote"
	"github.com/lomoval/eventstore/internal/store"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	configFile string
	url        string
	format     string
	verbose    bool

	config Config
	out    io.Writer
}

// NewRootCmd creates the root command writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	cmd := &cobra.Command{
		Use:   "eventsctl",
		Short: "List, add and delete events of a remote events endpoint",
		Long: `A CLI client for an events endpoint (GET/POST /events, DELETE /events/{id}).
Every command loads the collection first and prints it after the change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "Events endpoint URL (overrides remote.url)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", string(FormatText), "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log every store state change")

	cmd.AddCommand(newListCmd(opts), newAddCmd(opts), newDeleteCmd(opts), newReloadCmd(opts))
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return opts.finish(s, nil)
		},
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var fields form.Fields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event hosted by the configured identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if s.LastError() != "" {
				log.Warnf("initial load failed: %s", s.LastError())
			}

			f := form.New(s, opts.config.Identity.Provider())
			f.Fields = fields
			created, err := f.Submit(cmd.Context())
			if err != nil {
				return opts.finish(s, err)
			}
			fmt.Fprintf(opts.out, "Event %s added.\n", created.ID)
			return opts.finish(s, nil)
		},
	}

	cmd.Flags().StringVar(&fields.Name, "name", "", "Event name")
	cmd.Flags().StringVar(&fields.Description, "description", "", "Event description")
	cmd.Flags().StringVar(&fields.Location, "location", "", "Event location")
	cmd.Flags().StringVar(&fields.Date, "date", "", "Event date, YYYY-MM-DD")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return opts.finish(s, err)
			}
			fmt.Fprintf(opts.out, "Event %s deleted.\n", args[0])
			return opts.finish(s, nil)
		},
	}
}

func newReloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Load events again after the initial load and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return opts.finish(s, s.Load(cmd.Context()))
		},
	}
}

func (o *options) prepare() error {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	o.format = string(format)

	config, err := NewConfig(o.configFile)
	if err != nil {
		return err
	}
	if o.url != "" {
		config.Remote.URL = o.url
	}
	if o.verbose {
		config.Logger.Level = verboseLevel(config.Logger.Level)
	}
	if err := logger.PrepareLogger(config.Logger); err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	o.config = config
	return nil
}

// verboseLevel raises level to at least INFO. Unparsable levels are kept for PrepareLogger to reject.
func verboseLevel(level string) string {
	if level == "" {
		return log.InfoLevel.String()
	}
	parsed, err := log.ParseLevel(level)
	if err != nil || parsed >= log.InfoLevel {
		return level
	}
	return log.InfoLevel.String()
}

func (o *options) openStore(ctx context.Context) (*store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := remote.New(o.config.Remote)
	if err != nil {
		return nil, err
	}

	var observers []store.Observer
	if o.verbose {
		observers = append(observers, func(state store.State) {
			log.WithField("items", len(state.Items)).WithField("loading", state.Loading).
				WithField("lastError", state.LastError).Info("store state changed")
		})
	}
	return store.New(ctx, client, observers...), nil
}

// finish prints the store state. opErr takes precedence over the recorded LastError.
func (o *options) finish(s *store.Store, opErr error) error {
	state := s.State()
	if err := WriteOutput(o.out, state.Items, OutputFormat(o.format)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if opErr != nil {
		return opErr
	}
	if state.LastError != "" {
		return errors.New(state.LastError)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
