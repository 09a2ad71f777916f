// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package launcher

import "runtime"

// Platform identifies the operating system family the game is launched on.
type Platform string

// Supported platform identifiers. Anything else is PlatformOther.
const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformOther   Platform = "other"
)

// HostPlatform returns the platform this binary is running on.
func HostPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	default:
		return PlatformOther
	}
}

// is64Bit reports whether arch is a 64-bit Go architecture.
func is64Bit(arch string) bool {
	switch arch {
	case "amd64", "arm64", "ppc64", "ppc64le", "mips64", "mips64le", "riscv64", "s390x", "loong64":
		return true
	default:
		return false
	}
}
