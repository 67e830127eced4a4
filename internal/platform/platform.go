// Package platform maps a detected browser platform to the help text that
// tells the user where render errors are reported.
package platform

import "strings"

// Family is a browser family as identified from a user agent.
type Family string

const (
	Unknown          Family = "unknown"
	Chromium         Family = "chromium"
	Chrome           Family = "chrome"
	EdgeChromium     Family = "edge-chromium"
	EdgeLegacy       Family = "edge-legacy"
	InternetExplorer Family = "ie"
	Firefox          Family = "firefox"
	Safari           Family = "safari"
	Opera            Family = "opera"
	HeadlessChrome   Family = "headless-chrome"
)

// Platform is the detected identity.
type Platform struct {
	Family Family
	Mobile bool
}

// Detect classifies a user agent string. Order matters: Edge, Opera and
// headless Chrome all carry "Chrome/" and Chrome carries "Safari/".
func Detect(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	p := Platform{Family: Unknown}
	p.Mobile = strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad")
	switch {
	case ua == "":
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edga/") || strings.Contains(ua, "edgios/"):
		p.Family = EdgeChromium
	case strings.Contains(ua, "edge/"):
		p.Family = EdgeLegacy
	case strings.Contains(ua, "trident/") || strings.Contains(ua, "msie "):
		p.Family = InternetExplorer
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		p.Family = Opera
	case strings.Contains(ua, "headlesschrome"):
		p.Family = HeadlessChrome
	case strings.Contains(ua, "chromium/"):
		p.Family = Chromium
	case strings.Contains(ua, "chrome/") || strings.Contains(ua, "crios/"):
		p.Family = Chrome
	case strings.Contains(ua, "firefox/") || strings.Contains(ua, "fxios/"):
		p.Family = Firefox
	case strings.Contains(ua, "safari/"):
		p.Family = Safari
	}
	return p
}

var consoleShortcuts = map[Family]string{
	Chromium:         "Ctrl+Shift+J",
	Chrome:           "Ctrl+Shift+J",
	EdgeChromium:     "Ctrl+Shift+J",
	Firefox:          "Ctrl+Shift+J",
	Safari:           "Option+⌘+C",
	Opera:            "Ctrl+Shift+I",
	EdgeLegacy:       "",
	InternetExplorer: "",
}

// DefaultConsoleShortcut is used for families missing from the table.
const DefaultConsoleShortcut = "Ctrl+Shift+J"

// ConsoleShortcut returns the developer console shortcut for f. Families
// with no usable console map to "".
func ConsoleShortcut(f Family) string {
	if shortcut, ok := consoleShortcuts[f]; ok {
		return shortcut
	}
	return DefaultConsoleShortcut
}

// ErrorHint returns the help line about render errors. A visible browser
// gets its console shortcut; a headless or unknown one points to logPath.
// Mobile platforms get no hint.
func ErrorHint(p Platform, logPath string) string {
	if p.Mobile {
		return ""
	}
	if p.Family == HeadlessChrome || p.Family == Unknown {
		if logPath == "" {
			return "Render errors: see the log output"
		}
		return "Render errors: see the log file (" + logPath + ")"
	}
	shortcut := ConsoleShortcut(p.Family)
	if shortcut == "" {
		return "Render errors: see the developer console"
	}
	return "Render errors: see the developer console (" + shortcut + ")"
}
