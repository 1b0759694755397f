package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"opsdeck/internal/files"
	"opsdeck/internal/middleware"
	"opsdeck/internal/ui"
)

// filesCmd groups the local file browser commands
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Browse and manage local files",
}

var filesTypes bool

// browser is replaced by a memory filesystem in tests
var browser = files.NewOS()

func init() {
	rootCmd.AddCommand(filesCmd)

	lsCmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  middleware.RunE(runFilesList),
	}
	lsCmd.Flags().BoolVarP(&filesTypes, "types", "t", false, "show the file type distribution")

	filesCmd.AddCommand(
		lsCmd,
		&cobra.Command{
			Use:   "rename <dir> <old> <new>",
			Short: "Rename an entry",
			Args:  cobra.ExactArgs(3),
			RunE: middleware.RunE(func(cmd *cobra.Command, args []string) error {
				if err := browser.Rename(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s → %s\n", args[1], args[2])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <dir> <name>",
			Short: "Delete a file or directory tree",
			Args:  cobra.ExactArgs(2),
			RunE: middleware.RunE(func(cmd *cobra.Command, args []string) error {
				if err := browser.Remove(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "put <file> <dir>",
			Short: "Upload a file into a directory",
			Args:  cobra.ExactArgs(2),
			RunE:  middleware.RunE(runFilesPut),
		},
		&cobra.Command{
			Use:   "get <dir> <name> [dest]",
			Short: "Download a file, into the current directory by default",
			Args:  cobra.RangeArgs(2, 3),
			RunE:  middleware.RunE(runFilesGet),
		},
		&cobra.Command{
			Use:   "mkdir <dir> <name>",
			Short: "Create a directory",
			Args:  cobra.ExactArgs(2),
			RunE: middleware.RunE(func(cmd *cobra.Command, args []string) error {
				if err := browser.Mkdir(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[1])
				return nil
			}),
		},
	)
}

func runFilesList(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	entries, err := browser.List(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(out, "  %s/\n", ui.Command(e.Name))
			continue
		}
		fmt.Fprintf(out, "  %-40s %s\n", e.Name, ui.Mutedf("%d B", e.Size))
	}
	if filesTypes {
		printDistribution(out, files.TypeDistribution(entries))
	}
	return nil
}

func runFilesPut(cmd *cobra.Command, args []string) error {
	dest, err := browser.Upload(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s → %s\n", args[0], dest)
	return nil
}

func runFilesGet(cmd *cobra.Command, args []string) error {
	dest := "."
	if len(args) == 3 {
		dest = args[2]
	}
	written, err := browser.Download(args[0], args[1], dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s → %s\n", args[1], written)
	return nil
}

func printDistribution(w io.Writer, dist map[string]int) {
	exts := make([]string, 0, len(dist))
	for ext := range dist {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if dist[exts[i]] != dist[exts[j]] {
			return dist[exts[i]] > dist[exts[j]]
		}
		return exts[i] < exts[j]
	})

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Title("File types"))
	for _, ext := range exts {
		fmt.Fprintf(w, "  %-10s %d\n", ext, dist[ext])
	}
}
