// Package useragent classifies raw User-Agent strings into the device,
// browser and operating system dimensions recorded on click events.
//
// Classification is deliberately coarse: a handful of PCRE patterns over the
// raw string, evaluated in a fixed priority order. It trades fidelity for
// predictability - the same string always produces the same record, and no
// input can make classification fail.
package useragent

import (
	"strings"
	"sync"

	"go.elara.ws/pcre"
)

// Device types recorded on click events.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// Classification is the derived, fully-populated (possibly empty-valued)
// record for one User-Agent string. Empty strings mean "unknown".
type Classification struct {
	DeviceType     string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
}

// Bot detection runs before everything else and short-circuits classification.
const botPattern = `(?i)(bot|crawler|spider|scraper|curl|wget|python)`

// browserRule captures a browser marker and the version token that follows it.
// Rules are evaluated in order; the first match wins.
type browserRule struct {
	name    string
	marker  string
	version string
}

// Order matters: Chromium-based agents advertise several markers at once
// (Edge includes "chrome/", Chrome includes "safari/"), so the most specific
// marker is tested first. Safari requires the absence of "chrome".
var browserRules = []browserRule{
	{name: "Edge", marker: `(?i)edg/`, version: `(?i)edg/([0-9.]+)`},
	{name: "Chrome", marker: `(?i)chrome/`, version: `(?i)chrome/([0-9.]+)`},
	{name: "Firefox", marker: `(?i)firefox/`, version: `(?i)firefox/([0-9.]+)`},
	{name: "Safari", marker: `(?i)safari/`, version: `(?i)version/([0-9.]+)`},
	{name: "Opera", marker: `(?i)(opera/|opr/)`, version: `(?i)(?:opera|opr)/([0-9.]+)`},
}

// windowsVersions maps Windows NT kernel versions to marketing names.
var windowsVersions = map[string]string{
	"10.0": "10",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
}

const (
	windowsPattern = `(?i)windows nt ([0-9]+\.[0-9]+)`
	macPattern     = `(?i)mac os x ([0-9_.]+)`
	androidPattern = `(?i)android ([0-9.]+)`
	iosPattern     = `(?i)(?:iphone|ipad).*? os ([0-9_]+)`
)

// regexCache compiles patterns once and reuses them across classifications.
type regexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *regexCache {
	return &regexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *regexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	// Double-check pattern
	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

var cache = newRegexCache()

func matchString(pattern, s string) bool {
	regex, err := cache.get(pattern)
	if err != nil {
		return false
	}
	return regex.MatchString(s)
}

func findGroup(pattern, s string) string {
	regex, err := cache.get(pattern)
	if err != nil {
		return ""
	}
	matches := regex.FindStringSubmatch(s)
	if len(matches) < 2 {
		return ""
	}
	return matches[len(matches)-1]
}

// Classify maps a raw User-Agent string to a Classification. It is a pure
// function: no I/O, no errors, identical output for identical input.
func Classify(userAgent string) Classification {
	if strings.TrimSpace(userAgent) == "" {
		return Classification{DeviceType: DeviceUnknown}
	}

	if matchString(botPattern, userAgent) {
		return Classification{DeviceType: DeviceBot, Browser: "Bot"}
	}

	return Classification{
		DeviceType:     detectDeviceType(userAgent),
		Browser:        detectBrowser(userAgent),
		BrowserVersion: detectBrowserVersion(userAgent),
		OS:             detectOS(userAgent),
		OSVersion:      detectOSVersion(userAgent),
	}
}

// detectDeviceType checks mobile markers before tablet markers. An Android
// tablet that also declares "mobile" therefore classifies as mobile - a known
// quirk of the upstream data that consumers rely on, so the order stays.
func detectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") {
		return DeviceMobile
	}
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return DeviceTablet
	}
	return DeviceDesktop
}

func detectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		if !matchString(rule.marker, userAgent) {
			continue
		}
		if rule.name == "Safari" && strings.Contains(ua, "chrome") {
			continue
		}
		return rule.name
	}
	return ""
}

func detectBrowserVersion(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		if !matchString(rule.marker, userAgent) {
			continue
		}
		if rule.name == "Safari" && strings.Contains(ua, "chrome") {
			continue
		}
		return findGroup(rule.version, userAgent)
	}
	return ""
}

func detectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os x") && !strings.Contains(ua, "iphone") && !strings.Contains(ua, "ipad"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	}
	return ""
}

func detectOSVersion(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "windows"):
		nt := findGroup(windowsPattern, userAgent)
		return windowsVersions[nt]
	case strings.Contains(ua, "mac os x") && !strings.Contains(ua, "iphone") && !strings.Contains(ua, "ipad"):
		return strings.ReplaceAll(findGroup(macPattern, userAgent), "_", ".")
	case strings.Contains(ua, "android"):
		return findGroup(androidPattern, userAgent)
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return strings.ReplaceAll(findGroup(iosPattern, userAgent), "_", ".")
	}
	return ""
}
