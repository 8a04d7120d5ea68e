package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text unchanged", "Jazz Night at the Blue Room", "Jazz Night at the Blue Room"},
		{"strips tags", "<b>Jazz</b> Night", "Jazz Night"},
		{"strips script", `Concert<script>alert("xss")</script>`, "Concert"},
		{"strips anchors", `<a href="https://evil.example">Gala</a>`, "Gala"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"keeps formatting", "<p>Doors open at <b>7pm</b></p>", "<p>Doors open at <b>7pm</b></p>"},
		{"removes script", `<p>Line-up</p><script>alert("xss")</script>`, "<p>Line-up</p>"},
		{"removes event handlers", `<b onclick="steal()">Free entry</b>`, "<b>Free entry</b>"},
		{"removes iframes", `<iframe src="https://evil.example"></iframe>after party`, "after party"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTML(tt.input))
		})
	}
}
