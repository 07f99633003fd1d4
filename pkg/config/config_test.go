package config

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    orb.Point
		wantErr bool
	}{
		{"1758060.4480746957,5927129.813028354", orb.Point{1758060.4480746957, 5927129.813028354}, false},
		{" 1.5 , -2 ", orb.Point{1.5, -2}, false},
		{"1.5", orb.Point{}, true},
		{"a,b", orb.Point{}, true},
		{"1,", orb.Point{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePoint(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePoint(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatPointRoundTrip(t *testing.T) {
	for _, p := range []orb.Point{DefaultOrig, DefaultDest} {
		got, err := ParsePoint(FormatPoint(p))
		if err != nil || got != p {
			t.Errorf("round trip of %v = %v, %v", p, got, err)
		}
	}
}

func TestCompareDefaults(t *testing.T) {
	t.Setenv("ROUTE_ORIG", "")
	t.Setenv("GRAPH_PATH", "")
	c, err := FromFlagsCompare(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Orig != DefaultOrig || c.Dest != DefaultDest {
		t.Errorf("orig/dest = %v/%v, want Auckland defaults", c.Orig, c.Dest)
	}
	if c.GraphPath != "graph.bin" || c.PNGPath != "routes.png" {
		t.Errorf("paths = %q %q", c.GraphPath, c.PNGPath)
	}
}

func TestCompareEnvAndFlags(t *testing.T) {
	t.Setenv("GRAPH_PATH", "/data/akl.db")
	t.Setenv("IMAGE_WIDTH", "640")

	c, err := FromFlagsCompare([]string{"--orig", "1,2", "--height", "480"})
	if err != nil {
		t.Fatal(err)
	}
	if c.GraphPath != "/data/akl.db" {
		t.Errorf("graph path = %q, want value from env", c.GraphPath)
	}
	if c.Orig != (orb.Point{1, 2}) {
		t.Errorf("orig = %v", c.Orig)
	}
	if c.Width != 640 || c.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", c.Width, c.Height)
	}

	if _, err := FromFlagsCompare([]string{"--dest", "nope"}); err == nil {
		t.Error("expected error for bad --dest")
	}
}

func TestPreprocessValidation(t *testing.T) {
	t.Setenv("OSM_INPUT", "")
	t.Setenv("OSM_FETCH", "")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"no source", nil, true},
		{"input", []string{"--input", "akl.osm.pbf"}, false},
		{"fetch", []string{"--fetch"}, false},
		{"both", []string{"--input", "a.osm", "--fetch"}, true},
		{"negative fallback", []string{"--fetch", "--fallback-speed", "-1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFlagsPreprocess(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	c, err := FromFlagsServer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":9090" {
		t.Errorf("addr = %q, want :9090", c.Addr)
	}
	if _, err := FromFlagsServer([]string{"--port", "0"}); err == nil {
		t.Error("expected error for port 0")
	}
}
