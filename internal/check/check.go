// Package check diagnoses the local devflow setup.
package check

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/devflow/internal/config"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "devflow check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("devflow check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports where the config came from. Broken TOML never gets
// this far; loading fails first.
func CheckConfig(cfg config.Config) Result {
	if cfg.Path == "" {
		path := filepath.Join(config.ConfigDir(), "config.toml")
		return Result{Name: "config", Status: Warn, Detail: "defaults (" + config.CompressHome(path) + " not found)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfg.Path)}
}

// CheckAPIKey checks that the provider key variable is set.
func CheckAPIKey(p config.ProviderConfig) Result {
	if p.APIKeyEnv == "" {
		return Result{Name: "api key", Status: Fail, Detail: "provider.api_key_env is empty"}
	}
	if p.APIKey() == "" {
		return Result{Name: "api key", Status: Fail, Detail: p.APIKeyEnv + " not set"}
	}
	return Result{Name: "api key", Status: Pass, Detail: p.APIKeyEnv + " set"}
}

// CheckProvider validates the provider base URL and model.
func CheckProvider(p config.ProviderConfig) Result {
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Result{Name: "provider", Status: Fail, Detail: fmt.Sprintf("invalid base_url %q", p.BaseURL)}
	}
	if strings.TrimSpace(p.Model) == "" {
		return Result{Name: "provider", Status: Fail, Detail: "model is empty"}
	}
	return Result{Name: "provider", Status: Pass, Detail: p.Model + " @ " + u.Host}
}

// CheckIdentity reports the signed-in identity. Identity is optional.
func CheckIdentity(cfg config.Config) Result {
	if !cfg.Identity.Present() {
		return Result{Name: "identity", Status: Warn, Detail: "not signed in (devflow init --email)"}
	}
	return Result{Name: "identity", Status: Pass, Detail: cfg.Identity.Name() + " <" + cfg.Identity.Email + ">"}
}

// CheckHistory checks that the history database location is usable.
func CheckHistory(h config.HistoryConfig) Result {
	if !h.Enabled {
		return Result{Name: "history", Status: Pass, Detail: "disabled"}
	}
	if _, err := os.Stat(h.Path); err == nil {
		return Result{Name: "history", Status: Pass, Detail: config.CompressHome(h.Path)}
	}
	return checkDir("history", filepath.Dir(h.Path), "created on first chat")
}

// CheckArchive checks the archive directory.
func CheckArchive(a config.ArchiveConfig) Result {
	return checkDir("archive", a.Dir, "created on first export")
}

func checkDir(name, dir, missing string) Result {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: name, Status: Warn, Detail: config.CompressHome(dir) + " not found (" + missing + ")"}
	}
	if !info.IsDir() {
		return Result{Name: name, Status: Fail, Detail: config.CompressHome(dir) + " is not a directory"}
	}
	return Result{Name: name, Status: Pass, Detail: config.CompressHome(dir)}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	return Report{Results: []Result{
		CheckConfig(cfg),
		CheckAPIKey(cfg.Provider),
		CheckProvider(cfg.Provider),
		CheckIdentity(cfg),
		CheckHistory(cfg.History),
		CheckArchive(cfg.Archive),
	}}
}
