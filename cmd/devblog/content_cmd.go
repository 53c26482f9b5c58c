package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	devblog "github.com/goliatone/go-devblog"
)

func listCmd(flags *globalFlags) *cobra.Command {
	var (
		tag    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List published entries, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := categoriesArg(args)
			if err != nil {
				return err
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, category := range categories {
				var items []*devblog.ParsedContent
				if tag != "" {
					items, err = module.Content().GetByTag(cmd.Context(), category, tag)
				} else {
					items, err = module.Content().GetAll(cmd.Context(), category)
				}
				if err != nil {
					return err
				}
				if asJSON {
					if err := writeJSON(out, map[string]any{"category": category, "items": items}); err != nil {
						return err
					}
					continue
				}
				printEntries(out, category, items)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only entries with this tag (case-sensitive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func showCmd(flags *globalFlags) *cobra.Command {
	var (
		asHTML bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show <category> <slug>",
		Short: "Print one entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := devblog.ParseCategory(args[0])
			if err != nil {
				return err
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}
			item, err := module.Content().FindBySlug(cmd.Context(), category, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, item)
			}
			fm := item.Frontmatter
			fmt.Fprintf(out, "%s\n", fm.Title)
			fmt.Fprintf(out, "slug:    %s\n", item.Slug)
			fmt.Fprintf(out, "date:    %s\n", fm.Date)
			if fm.Author != "" {
				fmt.Fprintf(out, "author:  %s\n", fm.Author)
			}
			if len(fm.Tags) > 0 {
				fmt.Fprintf(out, "tags:    %s\n", strings.Join(fm.Tags, ", "))
			}
			fmt.Fprintf(out, "reading: %d min\n\n", item.ReadingTime)
			if asHTML {
				fmt.Fprint(out, item.HTML)
			} else {
				fmt.Fprint(out, item.Body)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "print rendered HTML instead of markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func searchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <category> <query>",
		Short: "Case-insensitive search over title, description and body",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := devblog.ParseCategory(args[0])
			if err != nil {
				return err
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}
			items, err := module.Content().Search(cmd.Context(), category, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			printEntries(cmd.OutOrStdout(), category, items)
			return nil
		},
	}
}

func tagsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tags [category]",
		Short: "List tags with entry counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := categoriesArg(args)
			if err != nil {
				return err
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, category := range categories {
				tags, err := module.Content().Tags(cmd.Context(), category)
				if err != nil {
					return err
				}
				for _, tag := range tags {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", category, tag.Tag, tag.Count)
				}
			}
			return tw.Flush()
		},
	}
}

func checkCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [category]",
		Short: "Parse all content and report skipped files",
		Long: `Load every category the way the server does and list files that were
skipped because they failed to parse or reused a slug. Exits non-zero when
anything was skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := categoriesArg(args)
			if err != nil {
				return err
			}
			module, err := flags.loadModule(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			skipped := 0
			for _, category := range categories {
				report, err := module.Content().Report(cmd.Context(), category)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d published, %d unpublished, %d skipped\n",
					report.Category, report.Published, report.Unpublished, len(report.Skipped))
				for _, entry := range report.Skipped {
					fmt.Fprintf(out, "  %s (%s): %v\n", entry.Path, entry.Slug, entry.Err)
				}
				skipped += len(report.Skipped)
			}
			if skipped > 0 {
				return goerrors.New(fmt.Sprintf("%d content file(s) skipped", skipped), goerrors.CategoryCommand).
					WithTextCode("CONTENT_CHECK_FAILED")
			}
			return nil
		},
	}
}

func printEntries(w io.Writer, category devblog.Category, items []*devblog.ParsedContent) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", category, item.Frontmatter.PublishedAt.Format("2006-01-02"), item.Slug, item.Frontmatter.Title)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
