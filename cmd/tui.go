package cmd

import (
	"strings"

	"github.com/audiolibrelab/pocketrec/internal/audio"
	"github.com/audiolibrelab/pocketrec/internal/interrupt"
	"github.com/audiolibrelab/pocketrec/internal/session"
	"github.com/audiolibrelab/pocketrec/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive recording shell",
	Long: `Open the interactive shell: a live journal of lifecycle events with
keys for start, pause and stop. The i key injects a simulated session
interruption begin/end pair.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recorder := audio.NewRecorder(cfg)

		// The controller listens on the injector; OS interruption
		// signals are forwarded into it when enabled.
		injector := interrupt.NewChanSource()
		if strings.EqualFold(cfg.Interrupt.Source, "signals") {
			signals := interrupt.NewSignalSource()
			defer signals.Close()
			go func() {
				for note := range signals.Notes() {
					injector.Deliver(note)
				}
			}()
		}

		controller := session.New(recorder, injector)
		controller.Setup()
		defer controller.Close()

		return tui.Run(controller, injector)
	},
}
