package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fetched document cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached neighborhood and detail document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			switch cfg.Cache.Backend {
			case cache.BackendFile:
				fc, err := cache.NewFileCache(cfg.Cache.Dir)
				if err != nil {
					return fmt.Errorf("open cache dir: %w", err)
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Directory: %s", fc.Dir())
			case cache.BackendRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), cfg.Cache.RedisURL, cfg.Cache.Prefix)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Prefix: %s", cfg.Cache.Prefix)
			default:
				printInfo("The %s cache keeps nothing between runs", cfg.Cache.Backend)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case cache.BackendFile:
				fmt.Fprintln(out, c.Config.Cache.Dir)
			case cache.BackendRedis:
				fmt.Fprintln(out, c.Config.Cache.RedisURL)
			default:
				fmt.Fprintln(out, c.Config.Cache.Backend)
			}
			return nil
		},
	}
}

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			printDetail("# %s", c.configPath)
			return c.Config.Write(out)
		},
	}
}
