package upload

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

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/logger"
)

// pushSFTP copies one artifact to a remote server under the target's
// remote_dir, creating missing directories along the way.
func pushSFTP(ctx context.Context, target config.UploadTarget, key string, reader io.Reader) error {
	auths, err := sftpAuth(target)
	if err != nil {
		return err
	}

	sshConfig := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	port := target.Port
	if port == "" {
		port = "22"
	}
	addr := net.JoinHostPort(target.Host, port)

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", addr, err)
	}
	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer sftpClient.Close()

	remotePath := path.Join(target.RemoteDir, key)
	if err := mkdirAll(sftpClient, path.Dir(remotePath)); err != nil {
		return fmt.Errorf("ensure remote dir: %w", err)
	}

	f, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", remotePath, err)
	}

	logger.Debugf("uploaded '%s' to %s", remotePath, addr)
	return nil
}

// sftpAuth builds the auth methods from the target: a private key (raw PEM
// or base64-wrapped) wins over a password.
func sftpAuth(target config.UploadTarget) ([]ssh.AuthMethod, error) {
	if target.PrivateKey != "" {
		keyBytes, err := base64.StdEncoding.DecodeString(target.PrivateKey)
		if err != nil {
			keyBytes = []byte(target.PrivateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if target.Password != "" {
		return []ssh.AuthMethod{ssh.Password(target.Password)}, nil
	}
	return nil, fmt.Errorf("sftp target has neither password nor private_key")
}

// mkdirAll mimics os.MkdirAll on the remote side by creating each segment;
// sftp paths are posix-like regardless of the local platform.
func mkdirAll(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}
	for _, part := range strings.Split(dir, "/") {
		if part == "" {
			continue
		}
		cur = path.Join(cur, part)
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
