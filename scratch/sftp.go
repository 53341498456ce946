package scratch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"vidfetch/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTP keeps scratch objects in a directory on a remote host
type SFTP struct {
	addr      string
	config    *ssh.ClientConfig
	remoteDir string
}

// NewSFTP builds an SFTP backend.
// accessInfo: host, user, remoteDir, port (default 22), password or privateKey (base64 or raw PEM).
func NewSFTP(ctx context.Context, accessInfo map[string]string) (Backend, error) {
	if err := requireKeys(accessInfo, "host", "user", "remoteDir"); err != nil {
		return nil, err
	}
	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}

	var auths []ssh.AuthMethod
	if privateKey := accessInfo["privateKey"]; privateKey != "" {
		// try to decode as base64, fall back to raw
		keyBytes, err := base64.StdEncoding.DecodeString(privateKey)
		if err != nil {
			keyBytes = []byte(privateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	} else if password := accessInfo["password"]; password != "" {
		auths = append(auths, ssh.Password(password))
	} else {
		return nil, fmt.Errorf("no auth method provided; set password or privateKey in accessInfo")
	}

	return &SFTP{
		addr: net.JoinHostPort(accessInfo["host"], port),
		config: &ssh.ClientConfig{
			User:            accessInfo["user"],
			Auth:            auths,
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         10 * time.Second,
		},
		remoteDir: accessInfo["remoteDir"],
	}, nil
}

// session dials a fresh SSH connection and opens an SFTP client on it.
// The returned func closes both.
func (b *SFTP) session(ctx context.Context) (*sftp.Client, func(), error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", b.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial tcp %s: %w", b.addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, b.addr, b.config)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("ssh handshake with %s: %w", b.addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("create sftp client: %w", err)
	}

	return sftpClient, func() {
		sftpClient.Close()
		sshClient.Close()
	}, nil
}

func (b *SFTP) remotePath(name string) string {
	return path.Join(b.remoteDir, name)
}

// Put copies reader into a new remote file
func (b *SFTP) Put(ctx context.Context, name string, reader io.Reader) error {
	client, done, err := b.session(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := mkdirAllSFTP(client, b.remoteDir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", b.remoteDir, err)
	}

	remotePath := b.remotePath(name)
	f, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}

	logger.Debugf("uploaded scratch file '%s' to %s", remotePath, b.addr)
	return nil
}

// Get reads the whole remote file
func (b *SFTP) Get(ctx context.Context, name string) ([]byte, error) {
	client, done, err := b.session(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	remotePath := b.remotePath(name)
	f, err := client.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("open remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read remote file %s: %w", remotePath, err)
	}
	return data, nil
}

// Remove deletes the remote file; a missing file is not an error
func (b *SFTP) Remove(ctx context.Context, name string) error {
	client, done, err := b.session(ctx)
	if err != nil {
		return err
	}
	defer done()

	remotePath := b.remotePath(name)
	if err := client.Remove(remotePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove remote file %s: %w", remotePath, err)
	}
	return nil
}

// Close is a no-op; connections are per operation
func (b *SFTP) Close() error { return nil }

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(dir, "/")
	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}

	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = path.Join(cur, p)
		if _, err := client.Stat(cur); err != nil {
			if os.IsNotExist(err) {
				if err := client.Mkdir(cur); err != nil {
					return fmt.Errorf("mkdir %s: %w", cur, err)
				}
			} else {
				return fmt.Errorf("stat %s: %w", cur, err)
			}
		}
	}
	return nil
}
