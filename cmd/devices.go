package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/bnema/mouseswipe/internal/input"
	"github.com/bnema/mouseswipe/internal/ui"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input devices and which ones would be grabbed",
	Long: `List every /dev/input/event* node. Devices reporting a right button are
treated as mice and grabbed by 'mouseswipe run'. Nodes that cannot be opened
usually mean missing permissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		source := input.NewSource(cfg.Devices.InputDir, cfg.Devices.VirtualName)
		infos, err := source.List()
		if err != nil {
			return err
		}

		renderDevices(cmd.OutOrStdout(), cfg.Devices.InputDir, infos)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func deviceStatus(info input.DeviceInfo) string {
	switch {
	case info.Err != nil:
		return "no access"
	case info.IsVirtual:
		return "virtual"
	case info.IsMouse:
		return "mouse"
	default:
		return "-"
	}
}

func renderDevices(w io.Writer, inputDir string, infos []input.DeviceInfo) {
	var output strings.Builder

	output.WriteString(ui.FormatHeader("INPUT DEVICES"))
	output.WriteString("\n\n")

	rows := make([][]string, 0, len(infos))
	mice, denied := 0, 0
	for _, info := range infos {
		status := deviceStatus(info)
		switch status {
		case "mouse":
			mice++
		case "no access":
			denied++
		}

		id := "-"
		if info.VendorID != "" {
			id = info.VendorID + ":" + info.ProductID
		}
		rows = append(rows, []string{info.Path, info.DisplayName(), id, status})
	}

	output.WriteString(ui.Table([]string{"PATH", "NAME", "ID", "STATUS"}, rows, func(row, col int) (lipgloss.Style, bool) {
		if col != 3 {
			return lipgloss.Style{}, false
		}
		switch rows[row][3] {
		case "mouse":
			return ui.SuccessStyle.Bold(true), true
		case "virtual":
			return ui.InfoStyle, true
		case "no access":
			return ui.WarningStyle, true
		}
		return ui.SubtleStyle, true
	}))

	output.WriteString("\n\n")
	if len(infos) == 0 {
		output.WriteString(ui.SubtleStyle.Render(fmt.Sprintf("No input devices in %s", inputDir)))
	} else {
		output.WriteString(ui.SubtleStyle.Render(fmt.Sprintf("Total: %d device(s), %d mouse(s)", len(infos), mice)))
	}
	if denied > 0 {
		output.WriteString("\n")
		output.WriteString(ui.WarningStyle.Render(fmt.Sprintf("%s %d device(s) could not be opened, try running as root", ui.IconWarning, denied)))
	}

	fmt.Fprintln(w, output.String())
}
