package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/target/rightname-go/internal/adapters/browser"
	"github.com/target/rightname-go/internal/bootstrap"
	"github.com/target/rightname-go/internal/domain/model"
)

// cli carries the streams and the lazily built App shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	styles styles

	// open and httpClient override the browser launcher and API transport.
	open       browser.OpenFunc
	httpClient *http.Client

	app    *bootstrap.App
	prompt *terminalPrompt
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut, styles: newStyles()}
}

func (c *cli) execute(ctx context.Context, args []string) error {
	defer c.close()
	root := c.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rightname",
		Short: "Evaluate brand names and manage your rightname session",
		Long: `rightname runs brand name evaluations against the evaluation service and shows
their progress. Stored reports require a signed-in session; an action started while
signed out is remembered and continues automatically after you sign in.

Configuration is read from the environment (and an optional .env file), for example
API_BASE_URL, AUTH_MODE and STATE_DIR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.AddCommand(
		c.whoamiCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.reportCmd(),
		c.evaluateCmd(),
		c.resumeCmd(),
		c.cancelCmd(),
	)
	return root
}

// setup loads configuration, builds the App and resolves the session. A pending action
// from an earlier run is resumed here when the session is already authenticated.
func (c *cli) setup(ctx context.Context) error {
	if c.app != nil {
		return nil
	}
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger := bootstrap.InitLogger(cfg.Logging, c.errOut)

	c.prompt = newTerminalPrompt(c.errOut, c.styles)
	app, err := bootstrap.NewApp(ctx, bootstrap.AppOptions{
		Config:     &cfg,
		Logger:     logger,
		Prompt:     c.prompt,
		Present:    c.present,
		Out:        c.errOut,
		Open:       c.open,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return err
	}
	c.app = app
	app.Start(ctx)
	return nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		slog.Default().Warn("close failed", "error", err)
	}
	c.app = nil
}

func (c *cli) present(_ context.Context, report *model.Report) error {
	return c.styles.writeReport(c.out, report)
}
