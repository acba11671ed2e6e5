package config

import (
	"os"
	"sync"
)

// dockerEnvPath is the marker file present in every Docker container.
var dockerEnvPath = "/.dockerenv"

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether the process runs inside a Docker container.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat(dockerEnvPath)
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveDatabaseHost rewrites loopback hosts in a connection descriptor to
// host.docker.internal when running in Docker, so that a descriptor written for
// the host machine keeps working from inside the container.
func ResolveDatabaseHost(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, inDocker bool) string {
	if !inDocker {
		return host
	}

	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	}
	return host
}
