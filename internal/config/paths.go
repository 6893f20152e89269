package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// resolvePath expands p and makes it absolute against base.
func resolvePath(p, base string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// expandPath expands a leading ~ and environment variables ($VAR, and
// %VAR% on Windows).
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = expandWindowsEnv(expanded)
	}

	if expanded != "~" && !strings.HasPrefix(expanded, "~/") &&
		!(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}

// expandWindowsEnv replaces %VAR% references; unknown names are kept as is.
func expandWindowsEnv(p string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(p, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(p[start+1:], '%')
		if end < 0 {
			break
		}
		key := p[start+1 : start+1+end]
		b.WriteString(p[:start])
		if val, ok := os.LookupEnv(key); ok && key != "" {
			b.WriteString(val)
		} else {
			b.WriteString(p[start : start+end+2])
		}
		p = p[start+end+2:]
	}
	b.WriteString(p)
	return b.String()
}
