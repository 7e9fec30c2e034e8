package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpecialDestination(t *testing.T) {
	testCases := []struct {
		name        string
		specialType string
		code        string
		expected    string
	}{
		{name: "whatsapp strips plus", specialType: "whatsapp", code: "+4915112345678", expected: "https://wa.me/4915112345678"},
		{name: "telegram strips at", specialType: "telegram", code: "@linkpress", expected: "https://t.me/linkpress"},
		{name: "instagram plain handle", specialType: "instagram", code: "linkpress", expected: "https://instagram.com/linkpress"},
		{name: "discord invite", specialType: "discord", code: "linkpress", expected: "https://discord.gg/linkpress"},
		{name: "email", specialType: "email", code: "hi@example.com", expected: "mailto:hi@example.com"},
		{name: "case insensitive type", specialType: "GitHub", code: "octocat", expected: "https://github.com/octocat"},
		{name: "code is trimmed", specialType: "tiktok", code: "  dancer  ", expected: "https://www.tiktok.com/@dancer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			destination, err := BuildSpecialDestination(tc.specialType, tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, destination)
		})
	}
}

func TestBuildSpecialDestinationErrors(t *testing.T) {
	_, err := BuildSpecialDestination("myspace", "someone")
	assert.Error(t, err)

	_, err = BuildSpecialDestination("telegram", "   ")
	assert.Error(t, err)
}

func TestSpecialTypes(t *testing.T) {
	types := SpecialTypes()
	assert.Contains(t, types, "whatsapp")
	assert.Contains(t, types, "discord")
	assert.Contains(t, types, "email")
	assert.True(t, len(types) >= 5)
}
