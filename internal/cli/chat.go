package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/intentbot/internal/cache"
	"github.com/ppiankov/intentbot/internal/chat"
	"github.com/ppiankov/intentbot/internal/lifecycle"
	"github.com/ppiankov/intentbot/internal/logger"
	"github.com/ppiankov/intentbot/internal/model"
	"github.com/ppiankov/intentbot/internal/ui"
	"github.com/ppiankov/intentbot/internal/watch"
)

var noWatch bool

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	Long: `Open a full-screen chat window. Type a message and press enter; type the
exit keyword (default "exit") to end the conversation, esc or ctrl+c to quit.

Logs go to log.file while the window is open.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch for new training batches")
}

// newService wires the message service to a lifecycle manager built on first use
func newService(cfg *model.Config) *chat.Service {
	loader := func() (chat.Responder, error) {
		m, err := lifecycle.New(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	var opts []chat.Option
	if cfg.Chat.CacheTTL > 0 {
		opts = append(opts, chat.WithCache(cache.NewMemoryCache(cfg.Chat.CacheTTL, 2*cfg.Chat.CacheTTL)))
	}
	return chat.NewService(loader, opts...)
}

// startupWarnings loads the responder once and collects what the chat window
// should show before the first message.
func startupWarnings(svc *chat.Service, log logrus.FieldLogger) []string {
	r, err := svc.Responder()
	if err != nil {
		log.WithError(err).Error("classifier unavailable")
		return []string{fmt.Sprintf("The classifier could not be loaded: %v", err)}
	}
	if w := r.PendingWarning(); w != "" {
		return []string{w}
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.GetLogger()

	svc := newService(cfg)

	// Load up front so startup problems show before the first message
	warnings := startupWarnings(svc, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var events <-chan watch.Event
	if cfg.Chat.WatchTraining && !noWatch {
		w, err := watch.New(cfg.Paths.DataDir, cfg.Paths.TrainingFile)
		if err != nil {
			log.WithError(err).Warn("training batch watcher disabled")
		} else {
			defer func() { _ = w.Close() }()
			if events, err = w.Watch(ctx); err != nil {
				log.WithError(err).Warn("training batch watcher disabled")
			}
		}
	}

	m := ui.New(svc.Handle, ui.Options{
		Greeting:    cfg.Chat.Greeting,
		Farewell:    cfg.Chat.Farewell,
		ExitKeyword: cfg.Chat.ExitKeyword,
		Warnings:    warnings,
		Events:      events,
	})

	start := time.Now()
	if err := ui.Run(m, tea.WithAltScreen(), tea.WithContext(ctx)); err != nil {
		return err
	}
	log.WithField("duration", time.Since(start).Round(time.Second).String()).Info("chat closed")
	return nil
}
