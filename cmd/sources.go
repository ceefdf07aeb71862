package cmd

import (
	"fmt"
	"runtime"

	"github.com/audiolibrelab/pocketrec/internal/audio"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available capture devices",
	Long:  `List all capture devices that can be used for recording.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCaptureDevices()
	},
}

func listCaptureDevices() error {
	fmt.Printf("🎙  Capture Devices (%s)\n", runtime.GOOS)
	fmt.Printf("═══════════════════════════════════════\n\n")

	backend := &audio.MalgoBackend{}
	devices, err := backend.ListDevices()
	if err != nil {
		return fmt.Errorf("failed to list capture devices: %w", err)
	}

	fmt.Printf("📋 DEVICES (%d found):\n", len(devices))
	for i, device := range devices {
		fmt.Printf("  %d. %s\n", i+1, device.Name)
		fmt.Printf("     id: %s\n", device.ID)
	}

	fmt.Printf("\n💡 Usage:\n")
	fmt.Printf("  • Set audio.device to one of the ids above, or leave it empty\n")
	fmt.Printf("    to record from the system default device.\n\n")

	return nil
}
