package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/graph"
	"github.com/revlane/revlane/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// logCommand creates the interactive log browser.
func (c *CLI) logCommand() *cobra.Command {
	var (
		limit   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Browse the commit graph interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			repo, err := gitrepo.Open(repoPath)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := c.pipelineOptions(repoPath)
			if limit > 0 {
				opts.Limit = limit
			}
			result, err := runner.Build(cmd.Context(), repo, opts)
			if err != nil {
				return err
			}
			if len(result.Commits) == 0 {
				printInfo("No commits to show")
				return nil
			}

			model := newLogModel(repo, result.Commits, c.palette())
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits to load")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// detailsMsg delivers commit details fetched in the background.
type detailsMsg struct {
	details *gitrepo.CommitDetails
	err     error
}

// LogModel is the bubbletea model for the commit browser.
type LogModel struct {
	repo    *gitrepo.Repository
	commits []render.Commit
	palette render.Palette

	cursor int
	offset int
	height int

	details *gitrepo.CommitDetails
	loadErr error
}

func newLogModel(repo *gitrepo.Repository, commits []render.Commit, palette render.Palette) LogModel {
	return LogModel{
		repo:    repo,
		commits: commits,
		palette: palette,
		height:  20,
	}
}

func (m LogModel) Init() tea.Cmd {
	return nil
}

func (m LogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.details != nil || m.loadErr != nil {
				m.details = nil
				m.loadErr = nil
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
			m.details = nil
		case "down", "j":
			if m.cursor < len(m.commits)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
			m.details = nil
		case "enter":
			hash := m.commits[m.cursor].Hash
			repo := m.repo
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				details, err := repo.CommitDetails(ctx, hash)
				return detailsMsg{details: details, err: err}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	case detailsMsg:
		m.details = msg.details
		m.loadErr = msg.err
	}
	return m, nil
}

func (m LogModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Commit Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  %v", m.loadErr)))
		b.WriteString("\n\n")
	} else if m.details != nil {
		b.WriteString(m.viewDetails())
		return b.String()
	}

	maxCol := render.MaxColumn(m.commits)
	end := m.offset + m.height
	if end > len(m.commits) {
		end = len(m.commits)
	}

	for i := m.offset; i < end; i++ {
		b.WriteString(m.viewRow(i, maxCol))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.commits))))
	return b.String()
}

// viewRow draws one commit line: lane markers, hash, refs, message.
func (m LogModel) viewRow(i, maxCol int) string {
	c := m.commits[i]

	var lane strings.Builder
	for col := 0; col <= maxCol; col++ {
		r := " "
		switch {
		case col == c.Column && c.IsTip:
			r = "○"
		case col == c.Column:
			r = "●"
		case passesThrough(c, col):
			r = "│"
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Color(col)))
		lane.WriteString(style.Render(r) + " ")
	}

	cursor := "  "
	if i == m.cursor {
		cursor = listSelectedStyle.Render("▸") + " "
	}

	refs := ""
	for _, ref := range c.Refs {
		name := ref.Name
		if ref.Type == gitrepo.RefTag {
			name = "tag: " + name
		}
		refs += StyleHighlight.Render("("+name+") ")
	}

	message := c.Message
	if i == m.cursor {
		message = listSelectedStyle.Render(message)
	}
	return fmt.Sprintf("%s%s%s %s%s",
		cursor, lane.String(), StyleDim.Render(c.ShortHash), refs, message)
}

func passesThrough(c render.Commit, col int) bool {
	for _, l := range c.Lines {
		if l.Kind == graph.SegmentPassThrough && l.FromColumn == col {
			return true
		}
	}
	return false
}

func (m LogModel) viewDetails() string {
	d := m.details
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(d.Hash))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  author  %s <%s>\n", d.AuthorName, d.AuthorEmail))
	b.WriteString(fmt.Sprintf("  date    %s\n", time.Unix(d.Timestamp, 0).UTC().Format(time.RFC1123)))
	for _, p := range d.ParentHashes {
		b.WriteString(fmt.Sprintf("  parent  %s\n", p))
	}
	b.WriteString("\n  " + StyleValue.Render(d.Message) + "\n\n")
	for _, fc := range d.FilesChanged {
		b.WriteString(fmt.Sprintf("  %s %s\n", statusStyle(fc.Status).Render(statusIcon(fc.Status)), fc.Path))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	return b.String()
}
