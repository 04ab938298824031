package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskday/internal/due"
	"github.com/idilsaglam/taskday/internal/exitcode"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/suggest"
	"github.com/idilsaglam/taskday/internal/ui"
)

const suggestFailed = "AI Suggestion Failed: could not generate a description, please try again"

func newAddCmd(e *env) *cobra.Command {
	var (
		description string
		dueArg      string
		withSuggest bool
	)
	cmd := &cobra.Command{
		Use:   "add <summary...>",
		Short: "Add a task",
		Example: `  taskday add "Plan team meeting" -d "Book a room and send invites" -D tomorrow
  taskday add Renew passport --due 2025-06-01 --suggest`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			now := e.now()

			data := model.TaskData{
				Summary:     strings.Join(args, " "),
				Description: description,
			}
			if dueArg == "" {
				return withCode(exitcode.UserError, model.ErrDueDateRequired)
			}
			if data.DueDate, err = due.Parse(dueArg, now); err != nil {
				return withCode(exitcode.UserError, err)
			}

			if strings.TrimSpace(data.Description) == "" && withSuggest {
				resp, err := suggest.Do(cmd.Context(), a.Suggester, suggest.Request{TaskSummary: data.Summary})
				if err != nil {
					ui.Hint(e.opt.Err, err.Error())
					return withCode(exitcode.BackendError, errors.New(suggestFailed))
				}
				data.Description = resp.SuggestedDescription
			}

			t, err := a.Store.Add(cmd.Context(), data)
			if err != nil {
				if errors.Is(err, model.ErrDescriptionRequired) {
					ui.Hint(e.opt.Err, "pass --description or --suggest")
				}
				return err
			}
			ui.OK(e.opt.Out, fmt.Sprintf("added %q (%s)", t.Summary, ui.ShortID(t.ID)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&description, "description", "d", "", "task description")
	f.StringVarP(&dueArg, "due", "D", "", "due date: YYYY-MM-DD, RFC 3339, today, tomorrow or +Nd")
	f.BoolVar(&withSuggest, "suggest", false, "generate the description from the summary when none is given")
	return cmd
}

func newListCmd(e *env) *cobra.Command {
	var (
		asJSON bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks by section",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			b := a.Store.Buckets(e.now())
			if asJSON {
				enc := json.NewEncoder(e.opt.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}
			ui.RenderList(e.opt.Out, b, e.now(), ui.ListOptions{Descriptions: all})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print sections as JSON")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include descriptions")
	return cmd
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0], e.now())
			if err != nil {
				return err
			}
			ui.RenderTask(e.opt.Out, t, e.now())
			return nil
		},
	}
}

func newEditCmd(e *env) *cobra.Command {
	var (
		summary     string
		description string
		dueArg      string
		withSuggest bool
	)
	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Change a task's summary, description or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			now := e.now()
			t, err := a.Store.Resolve(args[0], now)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if !f.Changed("summary") && !f.Changed("description") && !f.Changed("due") && !withSuggest {
				return usageError("nothing to change (use --summary, --description, --due or --suggest)")
			}
			data := t.Data()
			if f.Changed("summary") {
				data.Summary = summary
			}
			if f.Changed("description") {
				data.Description = description
			}
			if f.Changed("due") {
				if data.DueDate, err = due.Parse(dueArg, now); err != nil {
					return withCode(exitcode.UserError, err)
				}
			}
			if withSuggest && !f.Changed("description") {
				resp, err := suggest.Do(cmd.Context(), a.Suggester, suggest.Request{TaskSummary: data.Summary})
				if err != nil {
					ui.Hint(e.opt.Err, err.Error())
					return withCode(exitcode.BackendError, errors.New(suggestFailed))
				}
				data.Description = resp.SuggestedDescription
			}

			if _, err := a.Store.Update(cmd.Context(), t.ID, data); err != nil {
				return err
			}
			ui.OK(e.opt.Out, "updated "+ui.ShortID(t.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&summary, "summary", "s", "", "new summary")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.StringVarP(&dueArg, "due", "D", "", "new due date")
	f.BoolVar(&withSuggest, "suggest", false, "replace the description with a suggestion")
	return cmd
}

func newDoneCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "done <ref>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0], e.now())
			if err != nil {
				return err
			}
			t, err = a.Store.ToggleComplete(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			if t.Completed {
				ui.OK(e.opt.Out, fmt.Sprintf("completed %q", t.Summary))
			} else {
				ui.OK(e.opt.Out, fmt.Sprintf("reopened %q", t.Summary))
			}
			return nil
		},
	}
}

func newRemoveCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0], e.now())
			if err != nil {
				return err
			}
			if !yes && !confirm(e, fmt.Sprintf("Delete %q? This cannot be undone. [y/N] ", t.Summary)) {
				ui.Hint(e.opt.Out, "kept")
				return nil
			}
			if _, err := a.Store.Remove(cmd.Context(), t.ID); err != nil {
				return err
			}
			ui.OK(e.opt.Out, fmt.Sprintf("removed %q", t.Summary))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirm(e *env, prompt string) bool {
	fmt.Fprint(e.opt.Out, prompt)
	line, _ := bufio.NewReader(e.opt.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newSuggestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <summary...>",
		Short: "Suggest a description for a task summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := suggest.Do(cmd.Context(), a.Suggester, suggest.Request{TaskSummary: strings.Join(args, " ")})
			if err != nil {
				if errors.Is(err, suggest.ErrUnavailable) {
					ui.Hint(e.opt.Err, "check your key with: taskday auth status")
				}
				return err
			}
			fmt.Fprintln(e.opt.Out, resp.SuggestedDescription)
			return nil
		},
	}
}
