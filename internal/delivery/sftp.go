package delivery

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"outreach/internal/config"
)

type SFTPConfig struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	KnownHostsFile        string
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
}

func SFTPConfigFrom(cfg config.Config) SFTPConfig {
	return SFTPConfig{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPassword,
		RemoteDir:             cfg.SFTPRemoteDir,
		KnownHostsFile:        cfg.SFTPKnownHosts,
		InsecureIgnoreHostKey: cfg.SFTPInsecure,
	}
}

// Validate fills defaults and checks that a host key policy is set.
func (c *SFTPConfig) Validate() error {
	if c.Host == "" || c.User == "" || c.Pass == "" {
		return fmt.Errorf("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")
	}
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.KnownHostsFile == "" && !c.InsecureIgnoreHostKey {
		return fmt.Errorf("sftp: set SFTP_KNOWN_HOSTS or SFTP_INSECURE_IGNORE_HOST_KEY=true")
	}
	return nil
}

func (c SFTPConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.KnownHostsFile != "" {
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: known hosts: %w", err)
		}
		return cb, nil
	}
	return ssh.InsecureIgnoreHostKey(), nil
}

// Upload copies localPath into the remote directory and returns the remote
// path. remoteName defaults to the local base name.
func Upload(ctx context.Context, cfg SFTPConfig, localPath, remoteName string) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	cb, err := cfg.hostKeyCallback()
	if err != nil {
		return "", err
	}
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         cfg.Timeout,
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.client != nil {
				_ = r.client.Close()
			}
		}()
		return "", fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}
	defer sshClient.Close()

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", fmt.Errorf("sftp: new client: %w", err)
	}
	defer sftpCli.Close()

	if err := sftpCli.MkdirAll(cfg.RemoteDir); err != nil {
		return "", fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	remotePath := path.Join(cfg.RemoteDir, remoteName)
	dst, err := sftpCli.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("sftp: create remote file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("sftp: upload copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("sftp: close remote file: %w", err)
	}
	return remotePath, nil
}
