package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revlane/revlane/internal/server"
	"github.com/revlane/revlane/pkg/gitrepo"
)

// serveCommand creates the serve command exposing the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		limit   int
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Serve the commit graph as a JSON HTTP API",
		Long: `Serve the commit graph as a JSON HTTP API.

Endpoints:
  GET /api/graph?skip=0&limit=200   laid-out commit window
  GET /api/commits/{hash}           commit details with file changes
  GET /api/refs                     ref decorations by commit
  GET /healthz                      liveness probe

With --watch, ref updates in the repository are detected and logged as
they happen; responses always reflect the current HEAD either way, since
cache keys include the ref tips.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			ctx := cmd.Context()

			// Fail fast on a bad path before binding the socket.
			repo, err := gitrepo.Open(repoPath)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if watch {
				watcher, err := repo.Watch()
				if err != nil {
					// Watching is best-effort; the API stays correct
					// without it because cache keys include ref tips.
					printWarning("repository watching disabled: %v", err)
				} else {
					defer watcher.Stop()
					go func() {
						for range watcher.Changes() {
							c.Logger.Info("repository changed", "repo", repoPath)
						}
					}()
				}
			}

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(runner, repoPath, limit, c.Logger)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits per request")
	cmd.Flags().BoolVar(&watch, "watch", false, "log repository changes as they happen")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
