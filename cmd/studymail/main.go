// Command studymail receives study timer uploads and mails a summary once the
// client's day rolls over.
//
// Usage:
//
//	studymail --config ./config.yaml
//	studymail force-send --config ./config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"studymail/internal/di"
	"studymail/internal/structures"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:          "studymail",
		Short:        "Daily study summary mailer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := di.InitApp(flags)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "./config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "debug mode")

	root.AddCommand(forceSendCmd(flags))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func forceSendCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "force-send",
		Short: "Mail today's summary from the stored snapshot right away",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := di.InitService(flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			sentFor, err := service.ForceSend(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "summary sent for %s\n", sentFor)
			return nil
		},
	}
}
