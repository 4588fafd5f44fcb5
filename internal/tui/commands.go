package tui

import (
	"fmt"
	"strconv"
	"strings"

	"roseglass/internal/shell"
)

// control is the parsed form of a launcher or parameters line. Exactly one
// of its fields is meaningful; cmd is nil for purely local actions.
type control struct {
	cmd   shell.Command
	quit  bool
	copy  bool
	voice bool
	err   string
}

// parseSlash interprets a launcher line starting with "/".
func parseSlash(input string) control {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return control{err: "empty command"}
	}
	name := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]
	switch name {
	case "quit", "exit":
		return control{quit: true}
	case "about":
		return control{cmd: shell.SetAbout{Open: true}}
	case "parameters", "params":
		return control{cmd: shell.ToggleParameters{}}
	case "desktop":
		return control{cmd: shell.ExitToDesktop{}}
	case "voice":
		return control{voice: true}
	case "copy":
		return control{copy: true}
	default:
		return parseSetting(name, args)
	}
}

// parseSetting interprets a parameters-panel line. The same verbs work in
// the launcher behind a slash.
func parseSetting(name string, args []string) control {
	switch name {
	case "history":
		n, err := argInt(name, args)
		if err != "" {
			return control{err: err}
		}
		return control{cmd: shell.SetHistoryLength{Length: n}}
	case "stateful":
		b, err := argBool(name, args)
		if err != "" {
			return control{err: err}
		}
		return control{cmd: shell.SetStatefulness{Enabled: b}}
	case "glass":
		n, err := argInt(name, args)
		if err != "" {
			return control{err: err}
		}
		return control{cmd: shell.SetGlassIntensity{Intensity: n}}
	case "theme":
		if len(args) != 1 {
			return control{err: "usage: theme <id>"}
		}
		return control{cmd: shell.SetTheme{ID: args[0]}}
	case "import":
		if len(args) != 1 {
			return control{err: "usage: import <manifest.json>"}
		}
		return control{cmd: shell.ImportTheme{Path: args[0]}}
	case "background":
		if len(args) != 1 {
			return control{err: "usage: background <image-file>"}
		}
		return control{cmd: shell.SetBackground{Path: args[0]}}
	default:
		return control{err: fmt.Sprintf("unknown command: %s", name)}
	}
}

func argInt(name string, args []string) (int, string) {
	if len(args) != 1 {
		return 0, fmt.Sprintf("usage: %s <number>", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Sprintf("%s: %q is not a number", name, args[0])
	}
	return n, ""
}

func argBool(name string, args []string) (bool, string) {
	if len(args) != 1 {
		return false, fmt.Sprintf("usage: %s on|off", name)
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1", "yes":
		return true, ""
	case "off", "false", "0", "no":
		return false, ""
	default:
		return false, fmt.Sprintf("%s: expected on or off, got %q", name, args[0])
	}
}
