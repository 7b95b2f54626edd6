// liquidloc: schema localization for Liquid themes. It moves the display
// strings of section schemas into the default locale dictionary.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/liquidloc/config"
	"github.com/minios-linux/liquidloc/i18n"
	"github.com/minios-linux/liquidloc/jsontree"
	"github.com/minios-linux/liquidloc/langmeta"
	"github.com/minios-linux/liquidloc/logging"
	"github.com/minios-linux/liquidloc/resolver"
	"github.com/minios-linux/liquidloc/schema"
	"github.com/minios-linux/liquidloc/workspace"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	debug   bool
)

// openWorkspace opens the project containing start, or --root when given.
func openWorkspace(start string) (*workspace.Workspace, error) {
	root := rootDir
	if root == "" {
		var err error
		if root, err = workspace.FindRoot(start); err != nil {
			return nil, err
		}
	}
	return workspace.Open(root, nil, newLogger(os.Stderr))
}

func newLogger(w io.Writer) *slog.Logger {
	return logging.New(debug, w)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "liquidloc",
		Short: i18n.T("Schema localization for Liquid themes"),
		Long: `liquidloc: schema localization for Liquid themes.

Moves the display strings (names, labels, info texts, option labels) of
section schemas and the global settings schema into the default locale
dictionary and replaces them with "t:" references. Strings that already
exist in the dictionary are reused instead of duplicated.

Commands:
  translate   Localize the schema of one or more documents
  sync        Localize every section and the settings schema
  links       List the references in a document with their dictionary lines
  resolve     Find the dictionary line of one reference
  status      Show dictionary and locale coverage`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", "", i18n.T("Theme root directory (default: detected from the working directory or file)"))
	root.PersistentFlags().BoolVar(&debug, "debug", false, i18n.T("Enable debug logging"))

	root.AddCommand(
		newTranslateCmd(),
		newSyncCmd(),
		newLinksCmd(),
		newResolveCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "liquidloc version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	dryRun bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate <file>...",
		Short: i18n.T("Localize the schema of one or more documents"),
		Long: `Localize the configuration block of each document.

A section template (*.liquid) has its {% schema %} block rewritten; the
global settings schema (settings_schema.json) is rewritten as a whole. New
strings are added to the default dictionary, existing translations are never
overwritten. Documents without a configuration block are skipped with a
warning.

With --dry-run the patched block and the new entries are printed and no file
is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.OutOrStdout(), args, a)
		},
	}

	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, i18n.T("Print the result without writing files"))

	return cmd
}

func runTranslate(out io.Writer, files []string, a translateArgs) error {
	ws, err := openWorkspace(files[0])
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := ws.Translate(abs, workspace.TranslateOptions{DryRun: a.dryRun})
		switch {
		case errors.Is(err, schema.ErrNotFound):
			logWarning(i18n.T("%s: no schema block, skipped"), file)
			continue
		case err != nil:
			logError("%v", err)
			errs = append(errs, err)
			continue
		}

		if a.dryRun {
			fmt.Fprintf(out, "# %s\n%s\n", file, res.Block)
			if res.Entries.Len() > 0 {
				fmt.Fprintf(out, "# %s\n%s\n", i18n.T("new entries"), jsontree.Marshal(res.Entries))
			}
		}

		switch {
		case res.Created == 0 && res.Aliased == 0:
			logInfo(i18n.T("%s: nothing to translate"), file)
		case a.dryRun:
			logInfo(i18n.T("%s: would create %d, alias %d (%s)"), file, res.Created, res.Aliased, res.Key)
		default:
			logSuccess(i18n.T("%s: created %d, aliased %d (%s)"), file, res.Created, res.Aliased, res.Key)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(i18n.T("%d of %d documents failed"), len(errs), len(files))
	}
	return nil
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: i18n.T("Localize every section and the settings schema"),
		Long: `Localize every document of the theme: all *.liquid templates in the
sections directory and the global settings schema.

Each document's schema block is hashed into liquidloc.lock; blocks that have
not changed since the last sync are skipped unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, i18n.T("Process documents even if unchanged"))

	return cmd
}

func runSync(force bool) error {
	ws, err := openWorkspace(".")
	if err != nil {
		return err
	}
	logInfo(i18n.T("Theme root: %s"), ws.Root)

	report, err := ws.Sync(force)
	if report == nil {
		return err
	}

	for _, f := range report.Skipped {
		logWarning(i18n.T("%s: no schema block, skipped"), f)
	}
	for _, f := range report.Failed {
		logError(i18n.T("%s: failed"), f)
	}
	logSuccess(i18n.T("Translated %d, unchanged %d, skipped %d (%d entries created, %d aliased)"),
		len(report.Translated), len(report.Unchanged), len(report.Skipped), report.Created, report.Aliased)

	if err != nil {
		return fmt.Errorf(i18n.N("%d document failed", "%d documents failed", len(report.Failed)), len(report.Failed))
	}
	return nil
}

// ---------------------------------------------------------------------------
// links / resolve
// ---------------------------------------------------------------------------

func newLinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links <file>",
		Short: i18n.T("List the references in a document with their dictionary lines"),
		Long: `List every "t:" reference in a document as
  <line>:<column>  <reference>  <dictionary>#L<line>

References missing from the dictionary are reported as unresolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(cmd.OutOrStdout(), args[0])
		},
	}
}

func runLinks(out io.Writer, file string) error {
	ws, err := openWorkspace(file)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	links, err := ws.Links(abs)
	if err != nil {
		return err
	}

	unresolved := 0
	for _, l := range links {
		line, col := resolver.Position(string(text), l.Start)
		target := l.Target
		if !l.Resolved {
			target = l.Tooltip
			unresolved++
		}
		fmt.Fprintf(out, "%d:%d\tt:%s\t%s\n", line, col, l.Path, target)
	}

	if unresolved > 0 {
		logWarning(i18n.N("%d reference is unresolved", "%d references are unresolved", unresolved), unresolved)
	}
	return nil
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <reference>",
		Short: i18n.T("Find the dictionary line of one reference"),
		Long: `Print the dictionary location of a reference, with or without the
"t:" prefix, for example:

  liquidloc resolve t:sections.header.settings.color.label`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(".")
			if err != nil {
				return err
			}
			loc, err := ws.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			rel, err := filepath.Rel(ws.Root, ws.DictionaryPath())
			if err != nil {
				rel = ws.DictionaryPath()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\t%s\n", filepath.ToSlash(rel), loc.Line, loc.Value)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show dictionary and locale coverage"),
		Long: `Show the theme root, the default dictionary and the translation
coverage of every locale file next to it. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(out io.Writer) error {
	ws, err := openWorkspace(".")
	if err != nil {
		return err
	}
	st, err := ws.Status()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s%s%s\n", colorBlue, i18n.T("Theme"), colorReset)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Root:"), ws.Root)
	cfgState := i18n.T("defaults")
	if _, err := os.Stat(filepath.Join(ws.Root, config.FileName)); err == nil {
		cfgState = config.FileName
	}
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Config:"), cfgState)
	fmt.Fprintf(out, "  %-12s %d\n", i18n.T("Documents:"), st.Documents)

	dictState := st.Dictionary
	if !st.Exists {
		dictState += " (" + i18n.T("missing") + ")"
	}
	fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Dictionary:"), dictState)
	if len(st.Partitions) > 0 {
		fmt.Fprintf(out, "  %-12s %s\n", i18n.T("Partitions:"), strings.Join(st.Partitions, ", "))
	}
	fmt.Fprintf(out, "  %-12s %d\n", i18n.T("Sections:"), st.Sections)
	fmt.Fprintf(out, "  %-12s %d\n", i18n.T("Strings:"), st.Leaves)
	fmt.Fprintln(out)

	if len(st.Locales) == 0 {
		logInfo(i18n.T("No locale files found. Run 'liquidloc sync' to create the dictionary."))
		return nil
	}

	langs := make([]string, 0, len(st.Locales))
	for _, l := range st.Locales {
		langs = append(langs, l.Lang)
	}
	width := langColumnWidth(langs)

	fmt.Fprintf(out, "%s%s%s\n", colorBlue, i18n.T("Locales"), colorReset)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for _, l := range st.Locales {
		name := l.Meta.Name
		if l.Default {
			name += " (" + i18n.T("default") + ")"
		}
		if l.Err != nil {
			fmt.Fprintf(out, "%s  %-24s %s\n", langCell(l.Lang, width), name, i18n.T("unreadable"))
			logWarning("%s: %v", l.Path, l.Err)
			continue
		}
		fmt.Fprintf(out, "%s  %-24s %s  %d/%d\n",
			langCell(l.Lang, width), name, progressBar(l.Percent(), 20), l.Translated, l.Total)
	}
	fmt.Fprintln(out)
	return nil
}

// ---------------------------------------------------------------------------
// Table helpers
// ---------------------------------------------------------------------------

// progressBar renders percent as a colored bar of width cells followed by
// the right-aligned percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 90:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %4d%%", color, bar, colorReset, percent)
}

func langFlag(lang string) string {
	return langmeta.Resolve(lang).Flag()
}

func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		w = max(w, len(l))
	}
	return w
}

// langCell renders a flag and a language code padded to width. Flags are
// two cells wide; a missing flag is replaced by two spaces.
func langCell(lang string, width int) string {
	flag := langFlag(lang)
	if flag == "" {
		flag = "  "
	}
	pad := width - utf8.RuneCountInString(lang)
	if pad < 0 {
		pad = 0
	}
	return flag + " " + lang + strings.Repeat(" ", pad)
}
