package hostenv

import "testing"

type fakeSignals struct {
	cloud     bool
	container bool
	memory    uint64
	hostname  string
	laptop    bool
}

func (f fakeSignals) HasCloudMetadata() bool   { return f.cloud }
func (f fakeSignals) HasContainerMarker() bool { return f.container }
func (f fakeSignals) TotalMemoryBytes() uint64 { return f.memory }
func (f fakeSignals) Hostname() string         { return f.hostname }
func (f fakeSignals) HasLaptopMarker() bool    { return f.laptop }

var testRules = Rules{
	MemoryThresholdBytes: 2 << 30,
	DevHostPatterns:      []string{"dev-*", "*-dev"},
}

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		sig  fakeSignals
		want Profile
	}{
		{"cloud wins over everything", fakeSignals{cloud: true, container: true, memory: 1 << 30, laptop: true}, ProfileCloud},
		{"container before memory", fakeSignals{container: true, memory: 1 << 30}, ProfileContainer},
		{"low memory", fakeSignals{memory: 1 << 30, hostname: "dev-box"}, ProfileResourceConstrained},
		{"dev hostname prefix", fakeSignals{memory: 16 << 30, hostname: "dev-box"}, ProfileDevServer},
		{"dev hostname suffix", fakeSignals{memory: 16 << 30, hostname: "box-dev"}, ProfileDevServer},
		{"laptop marker", fakeSignals{memory: 16 << 30, hostname: "sullivan", laptop: true}, ProfileLaptop},
		{"default laptop", fakeSignals{memory: 16 << 30, hostname: "sullivan"}, ProfileLaptop},
		{"unknown memory never constrains", fakeSignals{memory: 0, hostname: "sullivan"}, ProfileLaptop},
	}
	for _, tc := range cases {
		if got := Classify(tc.sig, testRules); got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	sig := fakeSignals{memory: 8 << 30, hostname: "dev-media"}
	first := Classify(sig, testRules)
	for i := 0; i < 10; i++ {
		if got := Classify(sig, testRules); got != first {
			t.Fatalf("classification changed between calls: %q vs %q", first, got)
		}
	}
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		s, pattern string
		want       bool
	}{
		{"dev-box", "dev-*", true},
		{"box-dev", "*-dev", true},
		{"devbox", "dev-*", false},
		{"dev-box", "dev-box", true},
		{"dev", "dev-*", false},
		{"anything", "*", true},
		{"x", "", false},
	}
	for _, tc := range cases {
		if got := matchGlob(tc.s, tc.pattern); got != tc.want {
			t.Errorf("matchGlob(%q, %q) = %v want %v", tc.s, tc.pattern, got, tc.want)
		}
	}
}

func TestAdvisoryDefaultsCoverAllProfiles(t *testing.T) {
	for _, profile := range []Profile{ProfileCloud, ProfileContainer, ProfileResourceConstrained, ProfileDevServer, ProfileLaptop} {
		defaults := AdvisoryDefaults(profile)
		if defaults.SettleSeconds <= 0 {
			t.Errorf("%s: settle seconds must be positive", profile)
		}
		if defaults.LogFormat == "" {
			t.Errorf("%s: log format must be set", profile)
		}
	}
}
