package forge

import (
	"strings"
)

// Detect picks the forge implementation for an origin URL. The hosts
// map associates custom hostnames with a forge name ("github" or
// "gitlab") for self-hosted instances. Returns nil when the host is
// unknown.
func Detect(originURL string, hosts map[string]string) Forge {
	host := hostOf(originURL)
	if host == "" {
		return nil
	}
	if name, ok := hosts[host]; ok {
		return byName(name)
	}
	switch {
	case host == "github.com":
		return &GitHub{}
	case host == "gitlab.com" || strings.HasPrefix(host, "gitlab."):
		return &GitLab{}
	}
	return nil
}

func byName(name string) Forge {
	switch name {
	case "github":
		return &GitHub{}
	case "gitlab":
		return &GitLab{}
	}
	return nil
}

// hostOf extracts the hostname from an HTTP(S) or SSH git URL.
// Handles "https://host/owner/repo", "git@host:owner/repo", and
// "ssh://git@host/owner/repo" forms.
func hostOf(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if idx := strings.Index(url, "://"); idx != -1 {
		url = url[idx+3:]
	}
	// Strip user info: git@host -> host
	if idx := strings.Index(url, "@"); idx != -1 {
		url = url[idx+1:]
	}
	// SCP-like syntax uses ":" before the path, URL syntax uses "/".
	end := len(url)
	if idx := strings.IndexAny(url, ":/"); idx != -1 {
		end = idx
	}
	return url[:end]
}
