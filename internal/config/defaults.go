package config

const (
	defaultStateDir            = "~/.local/share/sullivan"
	defaultLogDir              = "~/.local/share/sullivan/logs"
	defaultComposeFile         = "~/sullivan/docker-compose.yml"
	defaultEnvFile             = "~/sullivan/.env"
	defaultResumeUnit          = "sullivan-provision-stage2"
	defaultDockerPool          = "172.80.0.0/16"
	defaultStepTimeout         = 1800
	defaultTailscaleAPIBaseURL = "https://api.tailscale.com"
	defaultTailnet             = "-"
	defaultKeyExpirySeconds    = 3600
	defaultMemoryThresholdMiB  = 2048
	defaultSettleDelaySeconds  = 10
	defaultProbeTimeoutSeconds = 5
	defaultComposeBinary       = "docker"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults. The declared
// service set mirrors the Sullivan compose stack: media servers, download
// clients, the arr automation suite, and utility apps.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
			ComposeFile: defaultComposeFile,
			EnvFile:     defaultEnvFile,
		},
		Provision: Provision{
			Packages: []string{
				"curl", "ca-certificates", "gnupg", "avahi-daemon", "smartmontools",
			},
			LegacyPackages: []string{
				"docker.io", "docker-doc", "docker-compose", "podman-docker", "containerd", "runc",
			},
			ResumeUnit:  defaultResumeUnit,
			DockerPool:  defaultDockerPool,
			StepTimeout: defaultStepTimeout,
		},
		Tailscale: Tailscale{
			APIBaseURL:       defaultTailscaleAPIBaseURL,
			Tailnet:          defaultTailnet,
			KeyExpirySeconds: defaultKeyExpirySeconds,
			Tags:             []string{"tag:server"},
		},
		Classifier: Classifier{
			MemoryThresholdMiB: defaultMemoryThresholdMiB,
			DevHostPatterns:    []string{"dev-*", "*-dev"},
			LaptopMarker:       "~/.config/sullivan/laptop",
		},
		Stack: Stack{
			Services: []Service{
				{Name: "qbittorrent", HealthURL: "http://localhost:8080"},
				{Name: "sabnzbd", HealthURL: "http://localhost:8081"},
				{Name: "jackett", HealthURL: "http://localhost:9117"},
				{Name: "flaresolverr", HealthURL: "http://localhost:8191"},
				{Name: "sonarr", DependsOn: []string{"qbittorrent", "jackett"}, HealthURL: "http://localhost:8989"},
				{Name: "radarr", DependsOn: []string{"qbittorrent", "jackett"}, HealthURL: "http://localhost:7878"},
				{Name: "lidarr", DependsOn: []string{"qbittorrent", "jackett"}, HealthURL: "http://localhost:8686"},
				{Name: "bazarr", DependsOn: []string{"sonarr", "radarr"}, HealthURL: "http://localhost:6767"},
				{Name: "jellyfin", HealthURL: "http://localhost:8096/health"},
				{Name: "plex", HealthURL: "http://localhost:32400/identity"},
				{Name: "audiobookshelf", HealthURL: "http://localhost:13378"},
				{Name: "jellyseerr", DependsOn: []string{"jellyfin"}, HealthURL: "http://localhost:5055"},
				{Name: "homarr", HealthURL: "http://localhost:7575"},
				{Name: "watchtower"},
			},
			SettleDelaySeconds:  defaultSettleDelaySeconds,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			ComposeBinary:       defaultComposeBinary,
		},
		Media: Media{
			MountPoints: []string{
				"/mnt/media/movies",
				"/mnt/media/tv",
				"/mnt/media/music",
				"/mnt/media/audiobooks",
				"/mnt/media/downloads",
			},
			UID: 1000,
			GID: 1000,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
