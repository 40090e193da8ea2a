package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// obraHuhTheme returns a custom huh theme using the Gruvbox palette.
func obraHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskFormValues backs the interactive task form. Dates and percent stay
// strings until submitted.
type taskFormValues struct {
	Name    string
	Kind    string
	Parent  string
	Start   string
	End     string
	Percent string
}

// taskForm collects the fields of a new task. parents lists the phases a task
// may hang under, keyed by task id.
func taskForm(v *taskFormValues, parents []*domain.Task) *huh.Form {
	if v.Kind == "" {
		v.Kind = string(domain.KindTask)
	}
	parentOpts := []huh.Option[string]{huh.NewOption("(top level)", "")}
	for _, p := range parents {
		parentOpts = append(parentOpts, huh.NewOption(p.WBSCode+" "+p.Name, p.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&v.Name).
				Validate(validateRequired),
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Task", string(domain.KindTask)),
					huh.NewOption("Phase", string(domain.KindPhase)),
					huh.NewOption("Milestone", string(domain.KindMilestone)),
				).
				Value(&v.Kind),
			huh.NewSelect[string]().
				Title("Parent").
				Options(parentOpts...).
				Value(&v.Parent),
		),
		huh.NewGroup(
			dateInput("Start (YYYY-MM-DD)", &v.Start, validateRequiredDate),
			dateInput("End (YYYY-MM-DD, blank for milestones)", &v.End, validateOptionalDate),
			huh.NewInput().
				Title("Percent complete").
				Placeholder("0").
				Value(&v.Percent).
				Validate(validatePercent),
		),
	).WithTheme(obraHuhTheme()).WithShowHelp(false)
}

// dateInput returns a huh.Input for a date field with YYYY-MM-DD validation.
func dateInput(title string, value *string, validate func(string) error) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2025-06-30").
		Value(value).
		Validate(validate)
}

// confirmForm creates a huh form for a yes/no confirmation.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(obraHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateRequiredDate(s string) error {
	if s == "" {
		return fmt.Errorf("required")
	}
	return validateOptionalDate(s)
}

// validatePercent accepts empty or an integer in [0, 100].
func validatePercent(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 100 {
		return fmt.Errorf("enter a number from 0 to 100")
	}
	return nil
}

// parseDate parses an optional YYYY-MM-DD flag value. Empty yields nil.
func parseDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q: use YYYY-MM-DD", flag, s)
	}
	return &d, nil
}
