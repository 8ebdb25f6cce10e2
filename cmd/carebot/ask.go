package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the terminal",
	Long:  `Runs one question through the full response pipeline and prints the answer. Useful for smoke-testing the knowledge base without a transport.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question cannot be empty")
		}

		appCfg := config.NewAppConfig(ctx)
		mistralCfg := config.NewMistralConfig(ctx)

		pipeline, cleanups := newPipeline(ctx, appCfg, mistralCfg)
		defer func() {
			for _, c := range cleanups {
				if err := c.Shutdown(ctx); err != nil {
					log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
				}
			}
		}()

		answer := pipeline.Answer(ctx, core.Question{
			Text:     question,
			Role:     "cli_user",
			UserID:   "cli",
			UserName: "cli",
		})

		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
