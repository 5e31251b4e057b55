package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/ankiforge/internal/cli"
	"codeberg.org/snonux/ankiforge/internal/models"
	"codeberg.org/snonux/ankiforge/internal/processor"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels()
	}

	proc := processor.NewProcessor(flags)

	// Handle --sweep-media flag
	if flags.SweepMedia {
		return proc.SweepMedia()
	}

	// Handle --backfill flag
	if flags.Backfill {
		return proc.RunBackfill()
	}

	ran := false
	if flags.BatchFile != "" {
		if err := proc.ProcessBatch(); err != nil {
			return err
		}
		ran = true
	} else if len(args) > 0 {
		if err := proc.ProcessSingleWord(args[0]); err != nil {
			return err
		}
		ran = true
	}

	// Generate Anki file if requested
	if flags.GenerateAnki {
		fmt.Printf("\nExporting Anki deck...\n")
		outputPath, err := proc.GenerateAnkiFile()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to export Anki deck: %v\n", err)
		} else if outputPath != "" {
			fmt.Printf("Anki deck created: %s\n", outputPath)
		}
		ran = true
	}

	if !ran {
		return cmd.Help()
	}

	return nil
}
