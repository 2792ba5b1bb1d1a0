// Package cli implements the provision-secrets and provision-users command trees.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/harness-provisioner/internal/clierror"
	"github.com/blackwell-systems/harness-provisioner/internal/config"
	"github.com/blackwell-systems/harness-provisioner/internal/graphql"
	"github.com/blackwell-systems/harness-provisioner/internal/harness"
	"github.com/blackwell-systems/harness-provisioner/internal/provision"
)

// ExecuteSecrets runs provision-secrets and returns the process exit code.
func ExecuteSecrets(version string) int {
	return execute(NewSecretsCommand(version))
}

// ExecuteUsers runs provision-users and returns the process exit code.
func ExecuteUsers(version string) int {
	return execute(NewUsersCommand(version))
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return clierror.ExitCode(err)
}

// newRootCommand builds a root with the global connection flags and the
// shared subcommands.
func newRootCommand(use, short, long, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Version:       version,
		Args:          noPositionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		printUsage(c)
		return clierror.NewUsageError(err.Error())
	})

	f := cmd.PersistentFlags()
	f.String("endpoint", config.DefaultEndpoint, "GraphQL endpoint URL")
	f.String("account-id", "", "Account id sent as the accountId query parameter")
	f.String("api-key", "", "API key sent in the X-Api-Key header")
	f.Bool("insecure-skip-verify", false, "Skip TLS certificate verification (not recommended)")
	f.Int("timeout", 30, "HTTP timeout in seconds")
	f.Bool("trace", false, "Log GraphQL requests and responses to stderr")
	f.Bool("parallel-lookups", false, "Resolve independent names concurrently")
	f.Float64("rate-limit", 0, "Maximum requests per second (0 for no limit)")

	bindFlags(f)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newPingCmd())

	return cmd
}

// bindFlags binds every flag in f to the viper key of the same name.
func bindFlags(f *pflag.FlagSet) {
	f.VisitAll(func(flag *pflag.Flag) {
		_ = viper.BindPFlag(flag.Name, flag)
	})
}

// noPositionalArgs rejects stray arguments as a usage error. Everything
// the commands take is passed through flags.
func noPositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd, "unexpected argument %q (all input is passed with flags)", args[0])
	}
	return nil
}

func printUsage(cmd *cobra.Command) {
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
}

// usageError prints the usage text and returns a usage CLIError.
func usageError(cmd *cobra.Command, format string, args ...any) error {
	printUsage(cmd)
	return clierror.NewUsageError(fmt.Sprintf(format, args...))
}

// session is the per-invocation wiring: configuration, transport and
// provisioner, built once from the resolved configuration.
type session struct {
	cfg    *config.Config
	client *graphql.Client
	prov   *provision.Provisioner
	logger *slog.Logger
	out    printer
}

func newSession(cmd *cobra.Command, requireAPIKey bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, clierror.NewValidationError(err.Error(), "Check flags, HARNESS_* environment variables and the config file.")
	}
	if requireAPIKey && cfg.APIKey == "" {
		return nil, clierror.NewValidationError("api key is required", "Set --api-key or the HARNESS_API_KEY environment variable.")
	}

	level := slog.LevelWarn
	if cfg.Trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	out := newPrinter(cmd)
	if cfg.InsecureSkipVerify {
		out.warn("TLS certificate verification is disabled")
	}

	client := graphql.NewClient(cfg.URL(), cfg.APIKey,
		graphql.WithHTTPClient(graphql.NewHTTPClient(cfg.Timeout, cfg.InsecureSkipVerify)),
		graphql.WithLogger(logger),
		graphql.WithRateLimit(cfg.RateLimit),
	)

	return &session{
		cfg:    cfg,
		client: client,
		prov: provision.New(harness.New(client), provision.Options{
			ParallelLookups: cfg.ParallelLookups,
			Logger:          logger,
		}),
		logger: logger,
		out:    out,
	}, nil
}

// classify converts a provisioning failure into a CLIError.
func (s *session) classify(what string, err error) error {
	var nf *provision.NotFoundError
	if errors.As(err, &nf) {
		return clierror.NewNotFoundError(string(nf.Kind), nf.Name, err)
	}
	var transportErr *graphql.TransportError
	if errors.As(err, &transportErr) {
		return clierror.NewServiceUnavailableError(s.cfg.Endpoint, err)
	}
	return clierror.NewOperationError(fmt.Sprintf("%s: %v", what, err), err)
}

// splitList splits a comma separated flag value and trims every element.
// Empty elements are rejected.
func splitList(flag, value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("--%s: element %d is empty", flag, i+1)
		}
		out = append(out, p)
	}
	return out, nil
}
