package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/cache"
	"github.com/matzehuels/mro/pkg/config"
	errs "github.com/matzehuels/mro/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if c.cfg.Cache.Backend != config.BackendFile {
				return errs.New(errs.ErrCodeUnsupported, "cache clear supports the file backend only; %s entries expire after their ttl", c.cfg.Cache.Backend)
			}
			store, err := cache.Open(cmd.Context(), c.cfg.Cache)
			if err != nil {
				return err
			}
			defer store.Close()

			fc := store.(*cache.FileCache)
			count, err := fc.Clear()
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidPath, err, "clear %s", fc.Dir())
			}
			if count == 0 {
				printInfo(out, "Cache is empty")
				return nil
			}
			printSuccess(out, "Cleared %d cached entries", count)
			printDetail(out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached results are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cc := c.cfg.Cache

			switch cc.Backend {
			case config.BackendFile:
				dir := cc.Dir
				if dir == "" {
					d, err := config.DefaultCacheDir()
					if err != nil {
						return errs.Wrap(errs.ErrCodeInvalidPath, err, "cache directory")
					}
					dir = d
				}
				fmt.Fprintln(out, dir)
			case config.BackendRedis:
				fmt.Fprintf(out, "redis://%s/%d\n", cc.Redis.Addr, cc.Redis.DB)
			case config.BackendMongo:
				fmt.Fprintf(out, "%s (%s.%s)\n", cc.Mongo.URI, cc.Mongo.Database, cc.Mongo.Collection)
			default:
				printInfo(out, "Caching is disabled")
			}
			return nil
		},
	}
}
