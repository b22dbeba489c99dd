package cli

import (
	"reflect"
	"testing"

	"github.com/williamcotton/gramgraph/pkg/config"
)

func TestParseFormats(t *testing.T) {
	def := []string{"svg"}
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty uses default", "", []string{"svg"}},
		{"blank uses default", "  ", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png,json", []string{"svg", "png", "json"}},
		{"spaces and empties", " svg , ,msgpack ", []string{"svg", "msgpack"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input, def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input string
		want          string
	}{
		{"", "", "chart"},
		{"", "-", "chart"},
		{"", "data/sales.csv", "data/sales"},
		{"out/chart.svg", "sales.csv", "out/chart"},
		{"out/chart.png", "", "out/chart"},
		{"out/chart.v2", "", "out/chart.v2"},
		{"report", "", "report"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestPipelineOptions(t *testing.T) {
	c := &CLI{Config: config.Default()}
	c.Config.Render.Title = "From config"
	c.Config.Render.Formats = []string{"png"}

	got := c.pipelineOptions("aes(x: a, y: b) | line()", renderOpts{})
	if got.Width != 800 || got.Height != 600 || got.Title != "From config" {
		t.Errorf("config defaults not applied: %+v", got)
	}
	if !reflect.DeepEqual(got.Formats, []string{"png"}) {
		t.Errorf("formats = %v, want [png]", got.Formats)
	}

	got = c.pipelineOptions("s", renderOpts{width: 400, height: 300, title: "Flag", formats: "svg,json", refresh: true})
	if got.Width != 400 || got.Height != 300 || got.Title != "Flag" || !got.Refresh {
		t.Errorf("flags not applied: %+v", got)
	}
	if !reflect.DeepEqual(got.Formats, []string{"svg", "json"}) {
		t.Errorf("formats = %v, want [svg json]", got.Formats)
	}
}
