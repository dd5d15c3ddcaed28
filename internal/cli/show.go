package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/revlane/revlane/pkg/gitrepo"
)

// showCommand creates the show command for inspecting a single commit.
func (c *CLI) showCommand() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Show commit details and changed files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitrepo.Open(repoPath)
			if err != nil {
				return err
			}
			details, err := repo.CommitDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCommitDetails(details)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "C", ".", "repository path")
	return cmd
}

func printCommitDetails(d *gitrepo.CommitDetails) {
	fmt.Println(StyleTitle.Render(d.Hash))
	printKeyValue("author", fmt.Sprintf("%s <%s>", d.AuthorName, d.AuthorEmail))
	if d.CommitterName != d.AuthorName || d.CommitterEmail != d.AuthorEmail {
		printKeyValue("committer", fmt.Sprintf("%s <%s>", d.CommitterName, d.CommitterEmail))
	}
	printKeyValue("date", time.Unix(d.Timestamp, 0).UTC().Format(time.RFC1123))
	for _, p := range d.ParentHashes {
		printKeyValue("parent", p)
	}
	fmt.Println()
	fmt.Println(StyleValue.Render(d.Message))
	fmt.Println()

	if len(d.FilesChanged) == 0 {
		printDetail("no file changes")
		return
	}
	for _, fc := range d.FilesChanged {
		label := fc.Status
		if fc.Status == "renamed" && fc.OldPath != "" {
			label = fmt.Sprintf("renamed from %s", fc.OldPath)
		}
		fmt.Printf("  %s %s\n", statusStyle(fc.Status).Render(statusIcon(fc.Status)), fc.Path)
		if label != fc.Status {
			printDetail("%s", label)
		}
	}
}

func statusIcon(status string) string {
	switch status {
	case "added":
		return "A"
	case "deleted":
		return "D"
	case "renamed":
		return "R"
	default:
		return "M"
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "added":
		return StyleSuccess
	case "deleted":
		return styleIconError
	case "renamed":
		return StyleWarning
	default:
		return StyleHighlight
	}
}
