package notification

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// LogDisplayer writes every notification as a structured log entry.
type LogDisplayer struct {
	Log *zap.Logger
}

func (d LogDisplayer) Show(_ context.Context, title string, opts Options) error {
	d.Log.Info("notification",
		zap.String("title", title),
		zap.String("body", opts.Body),
		zap.String("icon", opts.Icon),
	)
	return nil
}

// CommandDisplayer runs a desktop notifier such as notify-send with the
// arguments: -i <icon> <title> <body>.
type CommandDisplayer struct {
	Command string
}

func (d CommandDisplayer) Show(ctx context.Context, title string, opts Options) error {
	args := make([]string, 0, 4)
	if opts.Icon != "" {
		args = append(args, "-i", opts.Icon)
	}
	args = append(args, title, opts.Body)

	out, err := exec.CommandContext(ctx, d.Command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", d.Command, err, out)
	}
	return nil
}

// MultiDisplayer shows each notification on every displayer in order.
type MultiDisplayer []Displayer

func (m MultiDisplayer) Show(ctx context.Context, title string, opts Options) error {
	var errs []error
	for _, d := range m {
		if err := d.Show(ctx, title, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
