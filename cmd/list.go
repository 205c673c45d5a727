/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	serial "github.com/allbin/serterm"
	"github.com/allbin/serterm/internal/tui/components"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans for communication-capable serial devices including:
- tty0tty null-modem pairs (tnt*)
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		if !validFilter(filterType) {
			fmt.Fprintf(os.Stderr, "Error: unknown filter %q (valid: usb, standard, arm, null-modem, all)\n", filterType)
			os.Exit(1)
		}

		ports, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filteredPorts := filterPorts(ports, filterType)
		if len(filteredPorts) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			fmt.Printf("Found %d serial port(s):\n\n", len(filteredPorts))
			fmt.Println(components.RenderPortTable(portRows(filteredPorts)))
		} else {
			for _, port := range filteredPorts {
				fmt.Println(port)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, null-modem, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a table")
}

func validFilter(filterType string) bool {
	switch strings.ToLower(filterType) {
	case "", "all", "usb", "standard", "arm", "null-modem":
		return true
	}
	return false
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	filterType = strings.ToLower(filterType)
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		name := strings.ToLower(port[strings.LastIndex(port, "/")+1:])
		var keep bool
		switch filterType {
		case "usb":
			keep = strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm")
		case "standard":
			keep = strings.HasPrefix(name, "ttys") && !strings.HasPrefix(name, "ttysac")
		case "arm":
			keep = strings.HasPrefix(name, "ttyama")
		case "null-modem":
			keep = strings.HasPrefix(name, "tnt")
		}
		if keep {
			filtered = append(filtered, port)
		}
	}
	return filtered
}

func portRows(ports []string) []components.PortRow {
	rows := make([]components.PortRow, 0, len(ports))
	for _, port := range ports {
		info, err := serial.GetPortInfo(port)
		if err != nil {
			rows = append(rows, components.PortRow{Path: port, Type: "Unknown", Description: err.Error()})
			continue
		}
		row := components.PortRow{
			Path:        info.Path,
			Type:        getPortType(info.Name),
			Description: info.Description,
		}
		if info.IsUSB() {
			row.USB = info.VendorID + ":" + info.ProductID
			if info.Product != "" {
				row.Description = info.Product
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "tnt"):
		return "Null-Modem"
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
