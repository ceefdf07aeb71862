package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/audiolibrelab/pocketrec/internal/audio"
	"github.com/audiolibrelab/pocketrec/internal/interrupt"
	"github.com/audiolibrelab/pocketrec/internal/session"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone until interrupted",
	Long: `Record audio from the microphone to the configured output file.
Journal entries are printed to stdout as they happen. Press Ctrl+C to stop.

SIGTSTP pauses the recording as a session interruption; SIGCONT ends the
interruption and resumes recording.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recorder := audio.NewRecorder(cfg)

		var source interrupt.Source
		if strings.EqualFold(cfg.Interrupt.Source, "signals") {
			source = interrupt.NewSignalSource()
		}

		controller := session.New(recorder, source)
		controller.Setup()
		defer controller.Close()

		// Tee the journal to stdout, starting with the entries already
		// appended during Setup (failure lines land there before the
		// subscription exists)
		backlog, sub, cancel := controller.Journal().SubscribeWithBacklog()
		defer cancel()
		for _, entry := range backlog {
			fmt.Printf("%s  %s\n", entry.Time.Format("15:04:05"), entry.Text)
		}
		go func() {
			for entry := range sub {
				fmt.Printf("%s  %s\n", entry.Time.Format("15:04:05"), entry.Text)
			}
		}()

		controller.Start()
		if output := controller.OutputFile(); output != "" {
			slog.Info("Recording", "output", output)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		controller.Stop()
		return nil
	},
}
