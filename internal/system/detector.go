// Package system fills a SystemContext with facts about the target host.
package system

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/melih-ucgun/ifprop/internal/core"
)

// Detect, hedef sistemi transport üzerinden analiz eder ve SystemContext'i
// doldurur. Only the OS is required; the other facts are best effort.
func Detect(ctx *core.SystemContext) error {
	if ctx.Transport == nil {
		return fmt.Errorf("system detection needs a transport")
	}

	// 1. Temel OS Bilgileri
	kernelName, err := ctx.Exec("uname -s")
	if err != nil {
		return fmt.Errorf("detect os: %w", err)
	}
	ctx.OS = normalizeOS(kernelName, func() string {
		out, _ := ctx.Exec("uname -o")
		return out
	})

	info := parseOSRelease(execOrEmpty(ctx, "cat /etc/os-release"))
	ctx.Distro = info["ID"]
	ctx.Version = info["VERSION_ID"]

	ctx.Kernel = execOrEmpty(ctx, "uname -r")
	ctx.Arch = normalizeArch(execOrEmpty(ctx, "uname -m"))
	if ctx.OS != "linux" && ctx.Arch == "i86pc" {
		// illumos/Solaris x86 reports the platform, isainfo the ISA
		if isa := execOrEmpty(ctx, "isainfo -k"); isa != "" {
			ctx.Arch = normalizeArch(isa)
		}
	}
	ctx.Hostname = execOrEmpty(ctx, "hostname")

	// 2. Kullanıcı Bilgileri
	if username := execOrEmpty(ctx, "id -u -n"); username != "" {
		ctx.User = username
	}

	ctx.Log().Debug("system detected",
		"os", ctx.OS, "distro", ctx.Distro, "kernel", ctx.Kernel, "arch", ctx.Arch, "hostname", ctx.Hostname)
	return nil
}

func execOrEmpty(ctx *core.SystemContext, cmd string) string {
	out, err := ctx.Exec(cmd)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// normalizeOS maps a uname -s value to the names providers are keyed by.
// SunOS is split into illumos and solaris using uname -o.
func normalizeOS(kernelName string, operatingSystem func() string) string {
	name := strings.ToLower(strings.TrimSpace(kernelName))
	if name != "sunos" {
		return name
	}
	if strings.EqualFold(strings.TrimSpace(operatingSystem()), "illumos") {
		return "illumos"
	}
	return "solaris"
}

// normalizeArch, mimari isimlerini Go standartlarına çevirir.
func normalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	case "i386", "i686":
		return "386"
	}
	return arch
}

func parseOSRelease(content string) map[string]string {
	info := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if key, val, ok := strings.Cut(line, "="); ok {
			info[key] = strings.Trim(val, "\"")
		}
	}
	return info
}
