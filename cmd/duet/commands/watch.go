package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/config"
	"github.com/teranos/duet/errors"
	"github.com/teranos/duet/flow"
	"github.com/teranos/duet/logger"
	"github.com/teranos/duet/syncctl"
)

// WatchCmd watches an expression file and resyncs it on every change
var WatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch an expression file and resync it on every change",
	Long: `Run the full synchronization engine against a text file: every save
is treated as a text-side edit, debounced, parsed, and propagated to the
other representations. Sync failures are classified and reported the same
way an embedding editor would see them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		initial, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}

		orch := flow.New(flow.Config{
			Debounce:     cfg.DebounceConfig(),
			Controller:   cfg.ControllerConfig(),
			Hints:        cfg.HintPolicy(),
			HistoryLimit: cfg.Sync.HistoryLimit,
		}, nil, logger.Logger)
		defer orch.Close()

		if err := orch.Load(strings.TrimSpace(string(initial))); err != nil {
			return errors.Wrapf(err, "initial content of %s does not parse", path)
		}
		fmt.Printf("synced: %s\n", orch.Text())

		orch.OnStateChange(func(from, to syncctl.State) {
			if to == syncctl.StateAllSynced {
				fmt.Printf("synced: %s\n", orch.Text())
			}
		})
		orch.OnSyncFailed(func(f syncctl.Failure) {
			fmt.Fprintf(cmd.ErrOrStderr(), "sync failed [%s]: %s\n", f.ErrorCode, f.ErrorMessage)
		})

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "failed to create fsnotify watcher")
		}
		defer watcher.Close()
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}

		logger.Infow("Watching expression file",
			"path", path)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warnw("Failed to re-read watched file",
						"path", path,
						"error", err)
					continue
				}
				text := strings.TrimSpace(string(data))
				if text == orch.Text() {
					continue
				}
				if err := orch.UpdateText(text); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "edit rejected: %v\n", err)
					continue
				}
				if tree := orch.Tree(); tree != nil {
					logger.Debugw("Edit accepted",
						"canonical", ast.Render(tree))
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warnw("Watcher error",
					"error", err)

			case <-sigs:
				fmt.Println()
				return nil
			}
		}
	},
}
