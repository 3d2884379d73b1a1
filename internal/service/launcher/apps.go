package launcher

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// App is a command line that opens one application.
type App struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

type appsFile struct {
	Apps map[string]App `yaml:"apps"`
}

// LoadApps reads an app table override file:
//
//	apps:
//	  obsidian:
//	    command: obsidian
//	  notes:
//	    command: open
//	    args: [-a, Notes]
func LoadApps(path string) (map[string]App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read apps file: %w", err)
	}

	var f appsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse apps file %s: %w", path, err)
	}

	apps := make(map[string]App, len(f.Apps))
	for name, app := range f.Apps {
		if strings.TrimSpace(app.Command) == "" {
			return nil, fmt.Errorf("parse apps file %s: app %q has no command", path, name)
		}
		apps[strings.ToLower(strings.TrimSpace(name))] = app
	}
	return apps, nil
}

// DefaultApps returns the built-in table for goos.
func DefaultApps(goos string) map[string]App {
	switch goos {
	case "windows":
		return windowsApps()
	case "darwin":
		return darwinApps()
	default:
		return linuxApps()
	}
}

func winStart(target string) App {
	return App{Command: "cmd", Args: []string{"/c", "start", "", target}}
}

func macOpen(name string) App {
	return App{Command: "open", Args: []string{"-a", name}}
}

func bin(name string, args ...string) App {
	return App{Command: name, Args: args}
}

func windowsApps() map[string]App {
	const office = `C:\Program Files\Microsoft Office\root\Office16\`
	chrome := winStart(`C:\Program Files\Google\Chrome\Application\chrome.exe`)
	edge := winStart(`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`)
	clock := winStart("ms-clock:")

	return map[string]App{
		"chrome":          chrome,
		"google chrome":   chrome,
		"firefox":         winStart(`C:\Program Files\Mozilla Firefox\firefox.exe`),
		"edge":            edge,
		"microsoft edge":  edge,
		"brave":           winStart(`C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`),
		"command prompt":  winStart("cmd.exe"),
		"cmd":             winStart("cmd.exe"),
		"terminal":        winStart("cmd.exe"),
		"powershell":      winStart("powershell.exe"),
		"task manager":    winStart("taskmgr.exe"),
		"control panel":   winStart("control.exe"),
		"settings":        winStart("ms-settings:"),
		"file explorer":   winStart("explorer.exe"),
		"explorer":        winStart("explorer.exe"),
		"device manager":  winStart("devmgmt.msc"),
		"registry editor": winStart("regedit.exe"),
		"notepad":         winStart("notepad.exe"),
		"calculator":      winStart("calc.exe"),
		"paint":           winStart("mspaint.exe"),
		"snipping tool":   winStart("snippingtool.exe"),
		"word":            winStart(office + "WINWORD.EXE"),
		"excel":           winStart(office + "EXCEL.EXE"),
		"powerpoint":      winStart(office + "POWERPNT.EXE"),
		"outlook":         winStart(office + "OUTLOOK.EXE"),
		"vscode":          winStart("code"),
		"vs code":         winStart("code"),
		"spotify":         winStart("spotify.exe"),
		"vlc":             winStart(`C:\Program Files\VideoLAN\VLC\vlc.exe`),
		"photos":          winStart("ms-photos:"),
		"camera":          winStart("microsoft.windows.camera:"),
		"teams":           winStart("msteams:"),
		"discord":         winStart("discord:"),
		"zoom":            winStart("zoom:"),
		"whatsapp":        winStart("whatsapp:"),
		"store":           winStart("ms-windows-store:"),
		"clock":           clock,
		"alarms":          clock,
		"calendar":        winStart("outlookcal:"),
		"mail":            winStart("outlookmail:"),
		"maps":            winStart("bingmaps:"),
	}
}

func darwinApps() map[string]App {
	chrome := macOpen("Google Chrome")
	terminal := macOpen("Terminal")
	clock := macOpen("Clock")
	code := macOpen("Visual Studio Code")

	return map[string]App{
		"chrome":        chrome,
		"google chrome": chrome,
		"firefox":       macOpen("Firefox"),
		"safari":        macOpen("Safari"),
		"brave":         macOpen("Brave Browser"),
		"terminal":      terminal,
		"cmd":           terminal,
		"settings":      macOpen("System Settings"),
		"finder":        macOpen("Finder"),
		"file explorer": macOpen("Finder"),
		"notes":         macOpen("Notes"),
		"notepad":       macOpen("TextEdit"),
		"calculator":    macOpen("Calculator"),
		"vscode":        code,
		"vs code":       code,
		"spotify":       macOpen("Spotify"),
		"vlc":           macOpen("VLC"),
		"photos":        macOpen("Photos"),
		"discord":       macOpen("Discord"),
		"zoom":          macOpen("zoom.us"),
		"clock":         clock,
		"alarms":        clock,
		"calendar":      macOpen("Calendar"),
		"mail":          macOpen("Mail"),
		"maps":          macOpen("Maps"),
	}
}

func linuxApps() map[string]App {
	chrome := bin("google-chrome")
	terminal := bin("x-terminal-emulator")
	code := bin("code")
	clock := bin("gnome-clocks")

	return map[string]App{
		"chrome":        chrome,
		"google chrome": chrome,
		"firefox":       bin("firefox"),
		"brave":         bin("brave-browser"),
		"terminal":      terminal,
		"cmd":           terminal,
		"file explorer": bin("xdg-open", "."),
		"explorer":      bin("xdg-open", "."),
		"notepad":       bin("gedit"),
		"calculator":    bin("gnome-calculator"),
		"vscode":        code,
		"vs code":       code,
		"spotify":       bin("spotify"),
		"vlc":           bin("vlc"),
		"discord":       bin("discord"),
		"clock":         clock,
		"alarms":        clock,
		"calendar":      bin("gnome-calendar"),
	}
}
