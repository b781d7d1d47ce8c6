package transport

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/melih-ucgun/ifprop/internal/config"
)

// --- MOCK SSH SERVER HELPERS ---

// generateSigner, test sunucusu için anlık bir RSA anahtarı üretir.
func generateSigner() (ssh.Signer, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return ssh.ParsePrivateKey(keyPEM)
}

// execHandler receives the exec command and the session channel and returns
// the output and exit status.
type execHandler func(cmd string, channel ssh.Channel) (string, uint32)

// startMockSSHServer, exec isteklerini handler'a veren basit bir SSH sunucusu
// başlatır. Geriye sunucunun dinlediği adresi ve kapatma fonksiyonunu döner.
func startMockSSHServer(t *testing.T, handler execHandler) (string, func()) {
	signer, err := generateSigner()
	require.NoError(t, err, "SSH anahtarı üretilemedi")

	serverConfig := &ssh.ServerConfig{
		NoClientAuth: true, // Test için şifre sorma
	}
	serverConfig.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0") // Rastgele port
	require.NoError(t, err, "Dinleyici başlatılamadı")

	go func() {
		for {
			nConn, err := listener.Accept()
			if err != nil {
				return // Listener kapandı
			}

			go func(conn net.Conn) {
				_, chans, reqs, err := ssh.NewServerConn(conn, serverConfig)
				if err != nil {
					return
				}
				go ssh.DiscardRequests(reqs)

				for newChannel := range chans {
					if newChannel.ChannelType() != "session" {
						newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
						continue
					}
					channel, requests, err := newChannel.Accept()
					if err != nil {
						continue
					}
					go serveSession(channel, requests, handler)
				}
			}(nConn)
		}
	}()

	return listener.Addr().String(), func() { listener.Close() }
}

func serveSession(channel ssh.Channel, reqs <-chan *ssh.Request, handler execHandler) {
	defer channel.Close()
	for req := range reqs {
		if req.Type != "exec" {
			req.Reply(false, nil)
			continue
		}
		req.Reply(true, nil)

		// Payload: uint32 uzunluk + komut
		cmd := string(req.Payload[4:])
		out, status := handler(cmd, channel)
		channel.Write([]byte(out))

		payload := make([]byte, 4)
		binary.BigEndian.PutUint32(payload, status)
		channel.SendRequest("exit-status", false, payload)
		return
	}
}

func dialMock(t *testing.T, addr string, host config.Host) *SSHTransport {
	t.Helper()
	h, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := net.LookupPort("tcp", port)
	require.NoError(t, err)

	host.Address = h
	host.Port = p
	host.User = "testuser"
	if host.Password == "" {
		host.Password = "dummy-password"
	}

	tr, err := NewSSHTransport(context.Background(), host)
	require.NoError(t, err, "Transport oluşturulamadı")
	t.Cleanup(func() { tr.Close() })
	return tr
}

// --- TESTLER ---

func TestSSHTransport_Execute(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	addr, stop := startMockSSHServer(t, func(cmd string, _ ssh.Channel) (string, uint32) {
		mu.Lock()
		seen = append(seen, cmd)
		mu.Unlock()

		switch {
		case cmd == "ipadm show-if -p -o IFNAME":
			return "lo0\nnet0\n", 0
		case cmd == "uname -s":
			return "SunOS\n", 0
		default:
			return "unknown command\n", 1
		}
	})
	defer stop()

	tr := dialMock(t, addr, config.Host{Name: "gw"})
	ctx := context.Background()

	out, err := tr.Execute(ctx, "ipadm show-if -p -o IFNAME")
	require.NoError(t, err)
	assert.Equal(t, "lo0\nnet0", out)

	out, err = tr.Execute(ctx, "false")
	var exitErr *ssh.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitStatus())
	assert.Equal(t, "unknown command", out)

	osName, err := tr.GetOS(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sunos", osName)
}

func TestSSHTransport_BecomeSudo(t *testing.T) {
	addr, stop := startMockSSHServer(t, func(cmd string, channel ssh.Channel) (string, uint32) {
		if !strings.HasPrefix(cmd, "sudo -S -p '' sh -c ") {
			return "not wrapped: " + cmd, 1
		}
		// Şifre stdin üzerinden gelmeli
		line, _ := bufio.NewReader(channel).ReadString('\n')
		if strings.TrimSpace(line) != "s3cret" {
			return "bad password", 1
		}
		return strings.TrimPrefix(cmd, "sudo -S -p '' sh -c "), 0
	})
	defer stop()

	tr := dialMock(t, addr, config.Host{
		Name:           "gw",
		BecomeMethod:   "sudo",
		BecomePassword: "s3cret",
	})

	out, err := tr.Execute(context.Background(), "sysctl -w net.ipv4.conf.eth0.forwarding=1")
	require.NoError(t, err)
	assert.Equal(t, "'sysctl -w net.ipv4.conf.eth0.forwarding=1'", out)
}

func TestSSHTransport_Wrap(t *testing.T) {
	tests := []struct {
		name     string
		host     config.Host
		wantCmd  string
		wantPass string
	}{
		{"none", config.Host{}, "ipadm show-if", ""},
		{"sudo nopasswd", config.Host{BecomeMethod: "sudo"}, "sudo -n sh -c 'ipadm show-if'", ""},
		{"sudo password", config.Host{BecomeMethod: "sudo", BecomePassword: "pw"}, "sudo -S -p '' sh -c 'ipadm show-if'", "pw"},
		{"pfexec", config.Host{BecomeMethod: "pfexec"}, "pfexec sh -c 'ipadm show-if'", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &SSHTransport{config: tt.host}
			cmd, pass := tr.wrap("ipadm show-if")
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantPass, pass)
		})
	}
}

func TestNewSSHTransport_Errors(t *testing.T) {
	_, err := NewSSHTransport(context.Background(), config.Host{Name: "gw", Address: "127.0.0.1", Port: 1})
	assert.ErrorContains(t, err, "no ssh_key_path or password")

	_, err = NewSSHTransport(context.Background(), config.Host{
		Name: "gw", Address: "127.0.0.1", Port: 1, Password: "x",
		KnownHostsPath: "/nonexistent/known_hosts",
	})
	assert.ErrorContains(t, err, "known_hosts")

	_, err = NewSSHTransport(context.Background(), config.Host{Name: "gw", Address: "127.0.0.1", Port: 70000, Password: "x"})
	assert.ErrorContains(t, err, "geçersiz port")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSSHTransport(ctx, config.Host{Name: "gw", Address: "10.255.255.1", Port: 22, Password: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
