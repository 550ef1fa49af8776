package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/target/rightname-go/internal/adapters/callback"
	domainauth "github.com/target/rightname-go/internal/domain/auth"
	apperrors "github.com/target/rightname-go/internal/errors"
	"github.com/target/rightname-go/internal/ports"
	"github.com/target/rightname-go/internal/service"
)

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := c.app.Orchestrator.State()
			switch {
			case !state.IsAuthenticated() && c.app.Session.WasEverAuthenticated(cmd.Context()):
				fmt.Fprintln(c.out, "Not signed in. Your session expired; run `rightname login` to sign in again.")
			case !state.IsAuthenticated():
				fmt.Fprintln(c.out, "Not signed in.")
			default:
				id := state.Identity
				fmt.Fprintf(c.out, "Signed in as %s <%s>\n", c.styles.title.Render(id.DisplayName), id.Email)
			}

			action, ok, err := c.app.Orchestrator.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(c.out, c.styles.muted.Render("Waiting "+describeAction(action)+"."))
			}
			return nil
		},
	}
}

func (c *cli) loginCmd() *cobra.Command {
	var (
		email      string
		password   string
		returnPath string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser, or with --email",
		Long: `Sign in to the evaluation service.

Without flags the identity provider opens in your browser and the CLI waits for it to
redirect back to a local callback address. With --email the credentials are sent
directly; the password is read from stdin when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if email != "" {
				if password == "" {
					pw, err := c.readSecret("Password: ")
					if err != nil {
						return err
					}
					password = pw
				}
				id, err := c.app.Orchestrator.LoginEmail(ctx, email, password)
				if err != nil {
					return err
				}
				c.greet(id)
				return nil
			}
			return c.redirectLogin(ctx, returnPath)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "sign in with this email address instead of the browser")
	cmd.Flags().StringVar(&password, "password", "", "password for --email (read from stdin when empty)")
	cmd.Flags().StringVar(&returnPath, "return", "", "path to open in the web app after signing in")
	return cmd
}

// redirectLogin runs the provider redirect: listen for the callback, send the browser
// out, and complete the exchange with whatever the provider sends back.
func (c *cli) redirectLogin(ctx context.Context, returnPath string) error {
	cfg := c.app.Config.Auth
	listener, err := callback.Listen(callback.Config{
		Addr:   cfg.Callback.Addr,
		Path:   cfg.Callback.Path,
		Logger: c.app.Logger,
	})
	if err != nil {
		return err
	}
	defer listener.Close()

	if _, err := c.app.Orchestrator.BeginLogin(ctx, returnPath); err != nil {
		return err
	}
	fmt.Fprintln(c.errOut, c.styles.muted.Render("Waiting for the browser sign-in to finish..."))

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Callback.Wait)
	defer cancel()
	query, err := listener.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(err, apperrors.ErrCodeLoginFailed, "Timed out waiting for the browser sign-in.")
		}
		if errors.Is(err, context.Canceled) {
			return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "Sign-in canceled.")
		}
		return err
	}

	result, err := c.app.Orchestrator.CompleteLogin(ctx, query)
	if err != nil {
		return err
	}
	if result.Outcome == service.ExchangeReplayed {
		fmt.Fprintln(c.out, "This sign-in link was already used.")
		return nil
	}
	c.greet(result.Identity)
	return nil
}

func (c *cli) registerCmd() *cobra.Command {
	var in ports.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := c.readSecret("Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}
			id, err := c.app.Orchestrator.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.greet(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "your name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.Orchestrator.Logout(cmd.Context())
			fmt.Fprintln(c.out, "Signed out.")
			return nil
		},
	}
}

func (c *cli) resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Run the action remembered while you were signed out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ran, err := c.app.Orchestrator.Resume(cmd.Context())
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(c.out, "Nothing to resume.")
			}
			return nil
		},
	}
}

func (c *cli) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Drop the action waiting for sign-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			action, ok, err := c.app.Orchestrator.Pending(ctx)
			if err != nil {
				return err
			}
			if err := c.app.Orchestrator.CancelPrompt(ctx); err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(c.out, "No longer waiting "+describeAction(action)+".")
			} else {
				fmt.Fprintln(c.out, "Nothing was waiting.")
			}
			return nil
		},
	}
}

func (c *cli) greet(id domainauth.Identity) {
	name := id.FirstName()
	if name == "" {
		name = id.Email
	}
	fmt.Fprintln(c.out, c.styles.success.Render("Welcome, "+name+"!"))
}

// readSecret reads one line from stdin. Input is not masked.
func (c *cli) readSecret(label string) (string, error) {
	fmt.Fprint(c.errOut, label)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return "", apperrors.Validation("A password is required.")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
