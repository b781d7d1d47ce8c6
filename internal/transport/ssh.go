package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/melih-ucgun/ifprop/internal/config"
	"github.com/melih-ucgun/ifprop/internal/utils"
)

// SSHTransport runs commands on a remote host over a single SSH connection.
// Every Execute opens its own session, so it is safe for concurrent use.
type SSHTransport struct {
	client *ssh.Client
	config config.Host
}

func NewSSHTransport(ctx context.Context, host config.Host) (*SSHTransport, error) {
	if !utils.IsValidPort(host.Port) {
		return nil, fmt.Errorf("host %s: geçersiz port %d", host.Name, host.Port)
	}

	var authMethods []ssh.AuthMethod

	if host.SSHKeyPath != "" {
		key, err := os.ReadFile(host.SSHKeyPath)
		if err != nil {
			return nil, fmt.Errorf("ssh anahtarı okunamadı: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("ssh anahtarı parse edilemedi: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	if host.Password != "" {
		// Şifre ile kimlik doğrulama
		authMethods = append(authMethods, ssh.Password(host.Password))
	}
	if len(authMethods) == 0 {
		return nil, fmt.Errorf("host %s: no ssh_key_path or password configured", host.Name)
	}

	hostKeyCallback, err := hostKeyCallback(host)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            host.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("%s:%d", host.Address, host.Port)

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	done := make(chan dialResult, 1)
	go func() {
		client, err := ssh.Dial("tcp", addr, sshConfig)
		done <- dialResult{client, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("ssh bağlantı hatası (%s): %w", host.Name, r.err)
		}
		return &SSHTransport{client: r.client, config: host}, nil
	}
}

func hostKeyCallback(host config.Host) (ssh.HostKeyCallback, error) {
	if host.KnownHostsPath == "" {
		slog.Warn("host key verification disabled, set known_hosts_path", "host", host.Name)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(host.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("known_hosts okunamadı (%s): %w", host.KnownHostsPath, err)
	}
	return cb, nil
}

func (t *SSHTransport) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Execute runs a command and returns its trimmed combined output. With a
// become method the command is wrapped in sudo or pfexec; the sudo password
// is written to stdin so it never shows up in the remote process list.
func (t *SSHTransport) Execute(ctx context.Context, cmd string) (string, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	finalCmd, password := t.wrap(cmd)

	var out lockedBuffer
	session.Stdout = &out
	session.Stderr = &out

	var stdin io.WriteCloser
	if password != "" {
		if stdin, err = session.StdinPipe(); err != nil {
			return "", err
		}
	}

	if err := session.Start(finalCmd); err != nil {
		return "", err
	}

	if stdin != nil {
		go func() {
			defer stdin.Close()
			fmt.Fprintln(stdin, password)
		}()
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return strings.TrimSpace(out.String()), ctx.Err()
	case err := <-waitErr:
		return strings.TrimSpace(out.String()), err
	}
}

// lockedBuffer collects stdout and stderr, which the session copies from
// separate goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// wrap applies the host's become method to cmd.
func (t *SSHTransport) wrap(cmd string) (string, string) {
	switch t.config.BecomeMethod {
	case "sudo":
		if t.config.BecomePassword != "" {
			// -S: Stdin'den şifre oku, -p '': prompt gösterme
			return "sudo -S -p '' sh -c " + shellescape.Quote(cmd), t.config.BecomePassword
		}
		return "sudo -n sh -c " + shellescape.Quote(cmd), ""
	case "pfexec":
		return "pfexec sh -c " + shellescape.Quote(cmd), ""
	default:
		return cmd, ""
	}
}

// GetOS returns the lowercased kernel name of the remote host, e.g. "linux"
// or "sunos".
func (t *SSHTransport) GetOS(ctx context.Context) (string, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	out, err := session.Output("uname -s")
	if err != nil {
		return "", err
	}
	osName := strings.ToLower(strings.TrimSpace(string(out)))
	if osName == "" {
		return "", fmt.Errorf("bilinmeyen sistem çıktısı: %q", string(out))
	}
	return osName, nil
}
