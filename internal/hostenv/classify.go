package hostenv

// Profile is the coarse deployment classification chosen once at startup.
// It only adjusts advisory defaults; correctness-critical behavior never
// branches on it.
type Profile string

const (
	ProfileCloud               Profile = "cloud"
	ProfileContainer           Profile = "container"
	ProfileResourceConstrained Profile = "resource_constrained"
	ProfileDevServer           Profile = "dev_server"
	ProfileLaptop              Profile = "laptop"
)

// Signals exposes the host observations classification depends on. The
// production implementation reads /proc and /sys; tests inject fakes.
type Signals interface {
	HasCloudMetadata() bool
	HasContainerMarker() bool
	TotalMemoryBytes() uint64
	Hostname() string
	HasLaptopMarker() bool
}

// Rules holds the configured thresholds for classification.
type Rules struct {
	MemoryThresholdBytes uint64
	DevHostPatterns      []string
}

// Classify picks a deployment profile from host signals. It is a pure
// function of its inputs: first match wins, default is laptop.
func Classify(sig Signals, rules Rules) Profile {
	if sig.HasCloudMetadata() {
		return ProfileCloud
	}
	if sig.HasContainerMarker() {
		return ProfileContainer
	}
	if rules.MemoryThresholdBytes > 0 && sig.TotalMemoryBytes() > 0 && sig.TotalMemoryBytes() < rules.MemoryThresholdBytes {
		return ProfileResourceConstrained
	}
	if matchesAny(sig.Hostname(), rules.DevHostPatterns) {
		return ProfileDevServer
	}
	if sig.HasLaptopMarker() {
		return ProfileLaptop
	}
	return ProfileLaptop
}

// matchesAny implements simple glob matching with a single '*' wildcard,
// enough for hostname patterns like "dev-*" or "*-dev".
func matchesAny(hostname string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(hostname, pattern) {
			return true
		}
	}
	return false
}

func matchGlob(s, pattern string) bool {
	if pattern == "" {
		return false
	}
	star := -1
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' {
			star = i
			break
		}
	}
	if star < 0 {
		return s == pattern
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(s) < len(prefix)+len(suffix) {
		return false
	}
	return s[:len(prefix)] == prefix && s[len(s)-len(suffix):] == suffix
}

// Defaults describes the advisory knobs a profile adjusts.
type Defaults struct {
	PullOnStart   bool
	SettleSeconds int
	LogFormat     string
}

// AdvisoryDefaults returns per-profile defaults. Callers apply these only
// where the operator did not set an explicit value.
func AdvisoryDefaults(profile Profile) Defaults {
	switch profile {
	case ProfileCloud:
		return Defaults{PullOnStart: true, SettleSeconds: 10, LogFormat: "json"}
	case ProfileContainer:
		return Defaults{PullOnStart: false, SettleSeconds: 5, LogFormat: "json"}
	case ProfileResourceConstrained:
		return Defaults{PullOnStart: false, SettleSeconds: 30, LogFormat: "console"}
	case ProfileDevServer:
		return Defaults{PullOnStart: true, SettleSeconds: 5, LogFormat: "console"}
	default:
		return Defaults{PullOnStart: true, SettleSeconds: 10, LogFormat: "console"}
	}
}
