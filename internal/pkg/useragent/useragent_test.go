package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkpress/internal/pkg/useragent"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		ua       string
		expected useragent.Classification
	}{
		{
			name: "Chrome on Windows 10",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/118.0.0.0 Safari/537.36",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceDesktop,
				Browser:        "Chrome",
				BrowserVersion: "118.0.0.0",
				OS:             "Windows",
				OSVersion:      "10",
			},
		},
		{
			name: "Facebook crawler",
			ua:   "facebookexternalhit/1.1 (+crawler)",
			expected: useragent.Classification{
				DeviceType: useragent.DeviceBot,
				Browser:    "Bot",
			},
		},
		{
			name: "Edge on Windows 7",
			ua:   "Mozilla/5.0 (Windows NT 6.1; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceDesktop,
				Browser:        "Edge",
				BrowserVersion: "120.0.2210.91",
				OS:             "Windows",
				OSVersion:      "7",
			},
		},
		{
			name: "Safari on iPhone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 Version/14.0 Mobile/15E148 Safari/604.1",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceMobile,
				Browser:        "Safari",
				BrowserVersion: "14.0",
				OS:             "iOS",
				OSVersion:      "14.6",
			},
		},
		{
			name: "Safari on macOS",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/16.1 Safari/605.1.15",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceDesktop,
				Browser:        "Safari",
				BrowserVersion: "16.1",
				OS:             "macOS",
				OSVersion:      "10.15.7",
			},
		},
		{
			name: "Firefox on Linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceDesktop,
				Browser:        "Firefox",
				BrowserVersion: "119.0",
				OS:             "Linux",
			},
		},
		{
			name: "Opera on Windows 8.1",
			ua:   "Mozilla/5.0 (Windows NT 6.3; Win64; x64) AppleWebKit/537.36 Chrome/119.0.0.0 Safari/537.36 OPR/105.0.0.0",
			expected: useragent.Classification{
				// Opera ships a chrome/ token, and Chrome outranks Opera.
				DeviceType:     useragent.DeviceDesktop,
				Browser:        "Chrome",
				BrowserVersion: "119.0.0.0",
				OS:             "Windows",
				OSVersion:      "8.1",
			},
		},
		{
			name: "Chrome on Android tablet declaring mobile",
			ua:   "Mozilla/5.0 (Linux; Android 11; Tablet; SM-T870) AppleWebKit/537.36 Chrome/91.0.4472.120 Mobile Safari/537.36",
			expected: useragent.Classification{
				// Mobile markers win over tablet markers.
				DeviceType:     useragent.DeviceMobile,
				Browser:        "Chrome",
				BrowserVersion: "91.0.4472.120",
				OS:             "Android",
				OSVersion:      "11",
			},
		},
		{
			name: "iPad without mobile token",
			ua:   "Mozilla/5.0 (iPad; CPU OS 13_2 like Mac OS X) AppleWebKit/605.1.15 Version/13.0.1 Safari/604.1",
			expected: useragent.Classification{
				DeviceType:     useragent.DeviceTablet,
				Browser:        "Safari",
				BrowserVersion: "13.0.1",
				OS:             "iOS",
				OSVersion:      "13.2",
			},
		},
		{
			name: "curl",
			ua:   "curl/8.4.0",
			expected: useragent.Classification{
				DeviceType: useragent.DeviceBot,
				Browser:    "Bot",
			},
		},
		{
			name:     "empty string",
			ua:       "",
			expected: useragent.Classification{DeviceType: useragent.DeviceUnknown},
		},
		{
			name:     "unrecognized agent",
			ua:       "SomethingEntirelyCustom/1.0",
			expected: useragent.Classification{DeviceType: useragent.DeviceDesktop},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := useragent.Classify(tc.ua)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestClassifyBotKeywords(t *testing.T) {
	agents := []string{
		"Googlebot/2.1 (+http://www.google.com/bot.html)",
		"Mozilla/5.0 (compatible; AhrefsBot/7.0)",
		"screaming frog seo spider/19.0",
		"python-requests/2.31.0",
		"Wget/1.21.3 (linux-gnu)",
		"MyScraper 1.0",
		"some-crawler",
	}

	for _, ua := range agents {
		result := useragent.Classify(ua)
		assert.Equal(t, useragent.DeviceBot, result.DeviceType, "agent %q", ua)
		assert.Equal(t, "Bot", result.Browser, "agent %q", ua)
		assert.Empty(t, result.OS, "agent %q", ua)
	}
}
