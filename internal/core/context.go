package core

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// SystemContext, uygulamanın çalışma anındaki bağlamını (context) tutar.
// Standart Go "context" paketini sarmalar ve ifprop'a özel alanlar ekler.
// Exported fields are visible to `when` expressions.
type SystemContext struct {
	context.Context `yaml:"-"`

	// İşletim Sistemi Bilgileri
	OS       string `yaml:"os"`       // linux, illumos, solaris
	Distro   string `yaml:"distro"`   // debian, omnios, smartos
	Version  string `yaml:"version"`  // 12, r151050
	Kernel   string `yaml:"kernel"`   // 6.6.7-arch1-1, 5.11
	Arch     string `yaml:"arch"`     // amd64, arm64
	Hostname string `yaml:"hostname"` // Makine adı
	User     string `yaml:"user"`     // Mevcut kullanıcı

	// Taşıma Katmanı (Yerel veya Uzak)
	Transport Transport `yaml:"-"`

	// Çalışma Modu: true ise hiçbir değişiklik yapılmaz.
	DryRun bool `yaml:"-"`

	Logger *slog.Logger `yaml:"-"`
	Stdout io.Writer    `yaml:"-"`
}

func NewSystemContext(dryRun bool, tr Transport) *SystemContext {
	return &SystemContext{
		Context:   context.Background(),
		OS:        "unknown",
		User:      os.Getenv("USER"),
		Transport: tr,
		DryRun:    dryRun,
		Logger:    slog.Default(),
		Stdout:    os.Stdout,
	}
}

// Log returns the context logger, falling back to the default one for
// contexts built as struct literals in tests.
func (c *SystemContext) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Exec runs a command through the context transport.
func (c *SystemContext) Exec(cmd string) (string, error) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	c.Log().Debug("exec", "cmd", cmd)
	return c.Transport.Execute(ctx, cmd)
}
