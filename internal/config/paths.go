package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// resolvePath expands p and anchors a relative result at base.
func resolvePath(p, base string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// expandPath expands environment variables and a leading ~ (or ~\ on
// Windows, where %VAR% is expanded too).
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = expandPercentVars(p)
	}

	rest, ok := cutHome(p)
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// cutHome strips a leading "~" or "~/" and reports whether p started with one.
func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return rest, true
	}
	if runtime.GOOS == "windows" {
		if rest, ok := strings.CutPrefix(p, `~\`); ok {
			return rest, true
		}
	}
	return p, false
}

// expandPercentVars replaces %NAME% with the value of NAME. Unset names and
// a lone % are left as written.
func expandPercentVars(p string) string {
	var b strings.Builder
	for {
		before, after, ok := strings.Cut(p, "%")
		if !ok {
			b.WriteString(p)
			return b.String()
		}
		b.WriteString(before)
		name, tail, closed := strings.Cut(after, "%")
		switch {
		case !closed:
			b.WriteString("%" + after)
			return b.String()
		case name == "":
			b.WriteByte('%')
			p = after
			continue
		}
		if val, ok := os.LookupEnv(name); ok {
			b.WriteString(val)
		} else {
			b.WriteString("%" + name + "%")
		}
		p = tail
	}
}
