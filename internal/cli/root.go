// Package cli is the atlas command-line front end. Commands drive the view
// controllers against a running atlas API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"uia-atlas/atlas-portal/internal/apiclient"
	"uia-atlas/atlas-portal/internal/config"
	"uia-atlas/atlas-portal/internal/session"
	"uia-atlas/atlas-portal/internal/views"
)

// Streams are the terminal the commands talk to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// runtime is built once per invocation before any command runs.
type runtime struct {
	streams Streams
	cfg     *config.ClientConfig
	logger  *zap.Logger
	session *session.Session
	client  *apiclient.Client
	nav     views.Navigator
	style   *styles
	reader  *bufio.Reader
}

type rootFlags struct {
	home    string
	apiURL  string
	verbose bool
}

// Execute runs the atlas command against the process terminal.
func Execute(ctx context.Context) error {
	return NewRootCommand(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}).ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree.
func NewRootCommand(streams Streams) *cobra.Command {
	var (
		flags rootFlags
		rt    = &runtime{streams: streams}
	)

	root := &cobra.Command{
		Use:   "atlas",
		Short: "Browse and review the UIA sustainability project atlas",
		Long: `atlas talks to the project atlas API.

Public commands browse approved projects, reviewer commands need a session
created with 'atlas login'. Configuration lives in ~/.atlas/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().StringVar(&flags.home, "home", "", "Directory holding config and session (default ~/.atlas)")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Atlas API base URL")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log API requests")

	root.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newProjectsCmd(rt),
		newKPIsCmd(rt),
		newMarkersCmd(rt),
		newAnalyticsCmd(rt),
		newOptionsCmd(rt),
		newShowCmd(rt),
		newSearchCmd(rt),
		newAdminCmd(rt),
		newReviewCmd(rt),
		newSubmitCmd(rt),
		newEditCmd(rt),
		newFetchCmd(rt),
	)
	return root
}

func (rt *runtime) init(flags rootFlags) error {
	dir := flags.home
	if dir == "" {
		var err error
		if dir, err = config.ClientDir(); err != nil {
			return fmt.Errorf("failed to locate atlas directory: %w", err)
		}
	}

	cfg, err := config.LoadClientConfig(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	rt.cfg = cfg

	level := zapcore.WarnLevel
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level = lvl
	}
	if flags.verbose {
		level = zapcore.DebugLevel
	}
	rt.logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(rt.streams.Err),
		level,
	))

	sess, err := session.Create(session.NewFileStore(filepath.Join(dir, "session.json")))
	if err != nil {
		return err
	}
	rt.session = sess
	rt.style = newStyles(rt.streams.Out)
	rt.nav = views.NavigatorFunc(func(route string) {
		if route == views.RouteLogin {
			fmt.Fprintln(rt.streams.Err, "Your session has expired. Run 'atlas login' to sign in again.")
			return
		}
		rt.logger.Debug("Navigate", zap.String("route", route))
	})

	rt.client, err = apiclient.New(cfg.APIURL, sess,
		apiclient.WithLogger(rt.logger),
		apiclient.WithUnauthorizedHandler(func() { rt.nav.Navigate(views.RouteLogin) }))
	return err
}

// prompt reads one line from the input stream.
func (rt *runtime) prompt(label string) (string, error) {
	fmt.Fprint(rt.streams.Out, label)
	if rt.reader == nil {
		rt.reader = bufio.NewReader(rt.streams.In)
	}
	line, err := rt.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// secret reads a password without echo when the input is a terminal.
func (rt *runtime) secret(label string) (string, error) {
	if f, ok := rt.streams.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(rt.streams.Out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(rt.streams.Out)
		return string(b), err
	}
	return rt.prompt(label)
}

// describe turns a controller error into the text shown to the user.
func describe(err error) error {
	if err == nil {
		return nil
	}
	kind := views.Classify(err)
	switch kind {
	case views.ErrorUnauthorized:
		return fmt.Errorf("not signed in: %w", err)
	case views.ErrorFailure:
		return fmt.Errorf("%w (try again)", err)
	}
	return err
}
