// Package tui provides the interactive configuration editor behind
// "vega config edit".
package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/vega/internal/config"
)

// Editor holds the form-bound values for one editing session.
type Editor struct {
	original *config.Config

	// Form-bound values (strings for huh, converted on submit)
	fCycleHotkey   string
	fPromoteHotkey string
	fExcludedApps  string
	fLogLevel      string
	fPollInterval  string
	fStatePath     string
}

// NewEditor seeds the form from cfg. A nil cfg means the defaults.
func NewEditor(cfg *config.Config) *Editor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	return &Editor{
		original:       cfg,
		fCycleHotkey:   cfg.CycleHotkey,
		fPromoteHotkey: cfg.PromoteHotkey,
		fExcludedApps:  strings.Join(cfg.ExcludedApps, ", "),
		fLogLevel:      level,
		fPollInterval:  strconv.Itoa(cfg.PollIntervalMs),
		fStatePath:     cfg.StatePath,
	}
}

// Form builds the huh form bound to the editor's fields.
func (e *Editor) Form() *huh.Form {
	levels := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warn", "warn"),
		huh.NewOption("error", "error"),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("cycle_hotkey").
				Title("Cycle Hotkey").
				Description("Switches to the next layout").
				Validate(required("cycle hotkey")).
				Value(&e.fCycleHotkey),

			huh.NewInput().
				Key("promote_hotkey").
				Title("Promote Hotkey").
				Description("Moves the focused window to the master slot").
				Validate(required("promote hotkey")).
				Value(&e.fPromoteHotkey),

			huh.NewInput().
				Key("excluded_apps").
				Title("Excluded Apps").
				Description("Comma-separated application names never tiled").
				Value(&e.fExcludedApps),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levels...).
				Value(&e.fLogLevel),

			huh.NewInput().
				Key("poll_interval_ms").
				Title("Daemon Poll Interval (ms)").
				Validate(positiveInt).
				Value(&e.fPollInterval),

			huh.NewInput().
				Key("state_path").
				Title("State File").
				Description("Leave empty for the runtime directory").
				Value(&e.fStatePath),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// Result converts the form values into a validated config.
func (e *Editor) Result() (*config.Config, error) {
	poll, err := strconv.Atoi(strings.TrimSpace(e.fPollInterval))
	if err != nil {
		return nil, fmt.Errorf("poll interval: %w", err)
	}

	cfg := *e.original
	cfg.CycleHotkey = strings.TrimSpace(e.fCycleHotkey)
	cfg.PromoteHotkey = strings.TrimSpace(e.fPromoteHotkey)
	cfg.ExcludedApps = splitApps(e.fExcludedApps)
	cfg.LogLevel = e.fLogLevel
	cfg.PollIntervalMs = poll
	cfg.StatePath = strings.TrimSpace(e.fStatePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Edit runs the editor on the terminal, shows the pending changes and saves
// them to path once confirmed. It reports whether the file was written.
func Edit(cfg *config.Config, path string, in *os.File, out *os.File) (bool, error) {
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return false, fmt.Errorf("config edit requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ed := NewEditor(cfg)
	err := ed.Form().
		WithInput(in).
		WithOutput(out).
		WithProgramOptions(tea.WithAltScreen()).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updated, err := ed.Result()
	if err != nil {
		return false, err
	}

	lines := computeDiffLines(ed.original, updated)
	if len(lines) == 0 {
		fmt.Fprintln(out, renderNotice("No changes to save"))
		return false, nil
	}
	fmt.Fprintln(out, renderDiff(lines))

	save := true
	err = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save changes to " + path + "?").
			Affirmative("Save").
			Negative("Discard").
			Value(&save),
	)).
		WithTheme(huh.ThemeCharm()).
		WithInput(in).
		WithOutput(out).
		Run()
	if errors.Is(err, huh.ErrUserAborted) || (err == nil && !save) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := config.Save(updated, path); err != nil {
		return false, err
	}
	fmt.Fprintln(out, renderSummary(updated, path))
	return true, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func positiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

// splitApps parses a comma-separated list, dropping blanks.
func splitApps(s string) []string {
	apps := []string{}
	for _, part := range strings.Split(s, ",") {
		if app := strings.TrimSpace(part); app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}

