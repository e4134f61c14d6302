// Command plainconfig inspects and edits plainconfig files from the
// shell, preserving comments, blank lines and key order on every edit.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kjk/plainconfig/plainconfig"
	"github.com/kjk/plainconfig/configfile"
)

var (
	flgVerbose    bool
	flgWidth      int
	flgRewriteOld bool
	flgType       string
)

func setupLogging() {
	level := slog.LevelWarn
	if flgVerbose {
		level = slog.LevelDebug
	}
	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(h))
}

func opts() *configfile.Options {
	return &configfile.Options{
		MaxLineLen: flgWidth,
		RewriteOld: flgRewriteOld,
		Logger:     slog.Default(),
	}
}

// parseValue builds a typed value from its command-line spelling
func parseValue(s string) (any, error) {
	switch flgType {
	case "string":
		return s, nil
	case "int":
		return strconv.ParseInt(s, 10, 64)
	case "float":
		return strconv.ParseFloat(s, 64)
	case "bool":
		return strconv.ParseBool(s)
	case "null":
		return nil, nil
	case "literal":
		return plainconfig.ParseLiteral(s)
	}
	return nil, fmt.Errorf("unknown value type %q", flgType)
}

func cmdGet(cmd *cobra.Command, args []string) error {
	db, _, err := configfile.ReadFileOpts(args[0], opts())
	if err != nil {
		return err
	}
	v, ok := db[args[1]]
	if !ok {
		return fmt.Errorf("no key %q in %s", args[1], args[0])
	}
	fmt.Printf("%v\n", v)
	return nil
}

func cmdSet(cmd *cobra.Command, args []string) error {
	v, err := parseValue(args[2])
	if err != nil {
		return err
	}
	return configfile.Update(args[0], opts(), func(db map[string]any) error {
		db[args[1]] = v
		return nil
	})
}

func cmdDel(cmd *cobra.Command, args []string) error {
	return configfile.Update(args[0], opts(), func(db map[string]any) error {
		if _, ok := db[args[1]]; !ok {
			return fmt.Errorf("no key %q in %s", args[1], args[0])
		}
		delete(db, args[1])
		return nil
	})
}

func cmdKeys(cmd *cobra.Command, args []string) error {
	db, _, err := configfile.ReadFileOpts(args[0], opts())
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(db))
	for k := range db {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func cmdFmt(cmd *cobra.Command, args []string) error {
	// re-encode every value while keeping the layout
	return configfile.Update(args[0], opts(), func(db map[string]any) error {
		return nil
	})
}

func main() {
	root := &cobra.Command{
		Use:           "plainconfig",
		Short:         "inspect and edit plainconfig files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	root.PersistentFlags().BoolVarP(&flgVerbose, "verbose", "v", false, "log decode warnings")
	root.PersistentFlags().IntVar(&flgWidth, "width", 0, "wrap width, negative disables wrapping")
	root.PersistentFlags().BoolVar(&flgRewriteOld, "rewrite-old", false, "keep lines for keys missing from the mapping")

	get := &cobra.Command{
		Use:   "get <file> <key>",
		Short: "print the value of a key",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdGet,
	}
	set := &cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "set a key, creating the file if needed",
		Args:  cobra.ExactArgs(3),
		RunE:  cmdSet,
	}
	set.Flags().StringVarP(&flgType, "type", "t", "string", "value type: string, int, float, bool, null, literal")
	del := &cobra.Command{
		Use:   "del <file> <key>",
		Short: "delete a key, preserving the rest of the file",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdDel,
	}
	keys := &cobra.Command{
		Use:   "keys <file>",
		Short: "list all keys",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdKeys,
	}
	fmtCmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "normalize value encodings, keeping comments and order",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdFmt,
	}
	root.AddCommand(get, set, del, keys, fmtCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
