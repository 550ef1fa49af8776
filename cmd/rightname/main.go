// Command rightname evaluates brand names against the evaluation service and manages the
// signed-in session used to view stored reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/target/rightname-go/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	err := c.execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		printError(os.Stderr, c.styles, err)
		os.Exit(exitCode(err)) //nolint:forbidigo // CLI must signal failure to shell scripts
	}
}

// printError writes the user-facing message of err. AppErrors carry a message meant for
// people; anything else is printed as is.
func printError(w io.Writer, st styles, err error) {
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	fmt.Fprintln(w, st.failure.Render("Error: ")+msg)
}

func exitCode(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return 2
	case apperrors.ErrCodeCanceled:
		return 130
	default:
		return 1
	}
}
