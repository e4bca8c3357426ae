package vcs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

type authSource interface {
	For(url string) (transport.AuthMethod, error)
}

// envAuth picks credentials by URL scheme: SSH keys from ~/.ssh for SSH
// remotes, a token from the environment for HTTP(S) remotes, nothing for
// local paths.
type envAuth struct{}

func (envAuth) For(url string) (transport.AuthMethod, error) {
	switch {
	case isSSHURL(url):
		return sshAuth(), nil
	case strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://"):
		return httpAuth(), nil
	default:
		return nil, nil
	}
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "ssh://") || strings.HasPrefix(url, "git@")
}

// sshAuth returns the first usable key; nil lets go-git fall back to the
// SSH agent.
func sshAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	keyPaths := []string{
		filepath.Join(homeDir, ".ssh", "id_ed25519"),
		filepath.Join(homeDir, ".ssh", "id_rsa"),
		filepath.Join(homeDir, ".ssh", "id_ecdsa"),
	}

	for _, keyPath := range keyPaths {
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func httpAuth() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GITLAB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "gitlab-ci-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}
