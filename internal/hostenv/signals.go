package hostenv

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// SystemSignals reads real host state. All reads are best-effort: a signal
// that cannot be read simply reports absent/zero.
type SystemSignals struct {
	// LaptopMarkerPath is the local marker file the operator may drop to pin
	// the laptop profile.
	LaptopMarkerPath string
}

var cloudMetadataPaths = []string{
	"/var/lib/cloud/instance",
	"/run/cloud-init/instance-data.json",
	"/sys/class/dmi/id/product_name",
}

var cloudProductNames = []string{"amazon ec2", "google compute engine", "droplet", "virtual machine"}

func (s SystemSignals) HasCloudMetadata() bool {
	for _, path := range cloudMetadataPaths[:2] {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	if data, err := os.ReadFile(cloudMetadataPaths[2]); err == nil {
		product := strings.ToLower(strings.TrimSpace(string(data)))
		for _, name := range cloudProductNames {
			if strings.Contains(product, name) {
				return true
			}
		}
	}
	return false
}

func (s SystemSignals) HasContainerMarker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if data, err := os.ReadFile("/run/systemd/container"); err == nil {
		return strings.TrimSpace(string(data)) != ""
	}
	return false
}

func (s SystemSignals) TotalMemoryBytes() uint64 {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kib, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kib * 1024
	}
	return 0
}

func (s SystemSignals) Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	return hostname
}

func (s SystemSignals) HasLaptopMarker() bool {
	if strings.TrimSpace(s.LaptopMarkerPath) == "" {
		return false
	}
	_, err := os.Stat(s.LaptopMarkerPath)
	return err == nil
}
