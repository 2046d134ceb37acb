package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// keySeparator replaces the owner/name slash in store keys. GitHub
// forbids "@" in both owner and repository names, so the substitution
// is reversible.
const keySeparator = "@"

// ParseRepoURL parses a GitHub repository URL into owner and name components
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid GitHub repository URL")
	}

	return parts[0], parts[1], nil
}

// RepoKey builds the normalized store key for a repository. Every call
// site that touches the store must key through here.
func RepoKey(owner, name string) string {
	return owner + keySeparator + name
}

// SplitRepoKey is the inverse of RepoKey, used only when re-deriving a
// human-readable owner/name identifier for display.
func SplitRepoKey(key string) (owner, name string, err error) {
	parts := strings.SplitN(key, keySeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository key: %s", key)
	}
	return parts[0], parts[1], nil
}

// DisplayRepo renders a store key back to the owner/name form
func DisplayRepo(key string) string {
	owner, name, err := SplitRepoKey(key)
	if err != nil {
		return key
	}
	return owner + "/" + name
}
