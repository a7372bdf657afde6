// Package commands holds the client subcommands working against a running
// address book API.
package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/oaiiae/addressbook/client"
	"github.com/oaiiae/addressbook/reconciler"
	"github.com/oaiiae/addressbook/tui"
)

// Config keys, also settable as ADDRESSBOOK_<KEY> or in $HOME/.addressbook.yaml.
const (
	keyURL      = "url"
	keyYes      = "yes"
	keyVerbose  = "verbose"
	keyFilter   = "filter"
	keyPageSize = "page-size"
	keyPage     = "page"
)

// Env is what the commands need from their surroundings.
type Env struct {
	Viper  *viper.Viper
	Logger *slog.Logger
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer

	err     error // of the last command run
	alerted bool  // the notifier told the user about a failure
}

// NewEnv returns an [Env] on the process standard streams, reading the
// optional config file.
func NewEnv(logger *slog.Logger) *Env {
	v := viper.New()
	v.SetConfigName(".addressbook")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetEnvPrefix("addressbook")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyURL, "http://localhost:8000")
	v.SetDefault(keyPageSize, 0)
	v.SetDefault(keyPage, 1)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("could not read config file", "err", err)
		}
	}
	return &Env{Viper: v, Logger: logger, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Commands returns the client subcommands.
func Commands(env *Env) []*cobra.Command {
	cmds := []*cobra.Command{
		listCmd(env),
		addCmd(env),
		editCmd(env),
		deleteCmd(env),
		importCmd(env),
	}
	for _, cmd := range cmds {
		cmd.Flags().String(keyURL, "", "base URL of the address book API")
		cmd.Flags().BoolP(keyVerbose, "v", false, "print status changes")
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true // reported by [Env.Failed]
		env.record(cmd)
	}
	return cmds
}

// record keeps the error cmd fails with, from its flags, its arguments or
// its run, for [Env.Failed].
func (env *Env) record(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		env.err, env.alerted = err, false
		return err
	})
	if args := cmd.Args; args != nil {
		cmd.Args = func(cmd *cobra.Command, a []string) error {
			env.err, env.alerted = args(cmd, a), false
			return env.err
		}
	}
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env.err, env.alerted = nil, false
		env.err = run(cmd, args)
		return env.err
	}
}

// Failed reports whether the last command failed. Its error is written to
// Stderr unless the notifier already alerted the user.
func (env *Env) Failed() bool {
	if env.err == nil {
		return false
	}
	if !env.alerted {
		(&tui.Notifier{Out: env.Stderr}).Alert("", env.err)
		env.alerted = true
	}
	return true
}

// trackedNotifier marks the [Env] once the user was alerted.
type trackedNotifier struct {
	*tui.Notifier
	env *Env
}

func (n trackedNotifier) Alert(msg string, err error) {
	n.env.alerted = true
	n.Notifier.Alert(msg, err)
}

// bind makes the flags of cmd override the config values.
func (env *Env) bind(cmd *cobra.Command) error {
	return env.Viper.BindPFlags(cmd.Flags())
}

// interactive reports whether the user can be prompted.
func (env *Env) interactive() bool {
	return env.Stdin != nil && term.IsTerminal(int(env.Stdin.Fd()))
}

func (env *Env) confirmer() reconciler.Confirmer {
	if env.Viper.GetBool(keyYes) {
		return tui.AutoConfirm(true)
	}
	if env.interactive() {
		return tui.Confirm{}
	}
	// nobody to ask: refuse rather than delete unconfirmed
	return tui.AutoConfirm(false)
}

func (env *Env) notifier() reconciler.Notifier {
	return trackedNotifier{
		Notifier: &tui.Notifier{Out: env.Stderr, Verbose: env.Viper.GetBool(keyVerbose)},
		env:      env,
	}
}

func (env *Env) client() *client.Client {
	return client.New(env.Viper.GetString(keyURL), env.Logger)
}

// reconciler wires a client, a table renderer and a notifier together.
func (env *Env) reconciler() *reconciler.Reconciler {
	v := env.Viper
	return reconciler.New(
		env.client(),
		&tui.Table{
			Out:      env.Stdout,
			Filter:   v.GetString(keyFilter),
			PageSize: v.GetInt(keyPageSize),
			Page:     v.GetInt(keyPage),
		},
		env.notifier(),
		env.confirmer(),
		env.Logger,
	)
}

func listCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List address book entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.bind(cmd); err != nil {
				return err
			}
			return env.reconciler().Refresh(cmd.Context())
		},
	}
	cmd.Flags().StringP(keyFilter, "f", "", "only show entries containing this text")
	cmd.Flags().Int(keyPageSize, 0, "entries per page, 0 shows all")
	cmd.Flags().Int(keyPage, 1, "page to show")
	return cmd
}

func importCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Create entries from a spreadsheet, keeping existing ones",
		Long: `Create one entry per spreadsheet row. The first row names the columns:
firstname, name, street, street_nr, plz, city, phone, mobile, email,
whatsapp and internet. Rows missing a required value are counted as errors,
rows whose entry already exists as successes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.bind(cmd); err != nil {
				return err
			}
			return env.runImport(cmd, args[0])
		},
	}
}
