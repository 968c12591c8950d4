// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides weavectl, the operator CLI for the website
// generation service: inspecting deployed sites, retiring old ones, and
// rendering the deterministic fallback locally.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/config"
	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/fallback"
	"github.com/your-org/code-weaver/internal/fileset"
	"github.com/your-org/code-weaver/internal/store"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "weavectl",
		Short:        "Operator CLI for the Code Weaver website generation service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	rootCmd.AddCommand(newSitesCmd())
	rootCmd.AddCommand(newFallbackCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOptions(config.LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: false,
	})
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.Store.DBPath, zap.NewNop())
}

func newSitesCmd() *cobra.Command {
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage deployed sites",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List locally recorded deployments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.ListDeployments(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No recorded deployments.")
				return nil
			}
			for _, rec := range recs {
				fmt.Printf("%s  %-30s  %s  %s\n",
					rec.CreatedAt.Format(time.RFC3339), rec.SiteName, rec.SiteID, rec.URL)
			}
			return nil
		},
	}

	var cleanupCount int
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Retire the oldest recorded sites from the hosting account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Deploy.APIToken == "" {
				return fmt.Errorf("deploy API token not configured; set NETLIFY_API_TOKEN")
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			client, err := deploy.NewClient(cfg.Deploy.APIToken)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			oldest, err := st.OldestDeployments(ctx, cleanupCount)
			if err != nil {
				return err
			}
			if len(oldest) == 0 {
				fmt.Println("Nothing to retire.")
				return nil
			}

			for _, rec := range oldest {
				if err := client.DeleteSite(ctx, rec.SiteID); err != nil {
					fmt.Fprintf(os.Stderr, "failed to delete %s: %v\n", rec.SiteID, err)
					continue
				}
				if err := st.DeleteDeployment(ctx, rec.SiteID); err != nil {
					fmt.Fprintf(os.Stderr, "failed to drop record %s: %v\n", rec.SiteID, err)
				}
				fmt.Printf("retired %s (%s)\n", rec.SiteName, rec.SiteID)
			}
			return nil
		},
	}
	cleanupCmd.Flags().IntVar(&cleanupCount, "count", 3, "Number of oldest sites to retire")

	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "List sites visible to the hosting API token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Deploy.APIToken == "" {
				return fmt.Errorf("deploy API token not configured; set NETLIFY_API_TOKEN")
			}
			client, err := deploy.NewClient(cfg.Deploy.APIToken)
			if err != nil {
				return err
			}

			sites, err := client.ListSites(cmd.Context())
			if err != nil {
				return err
			}
			for _, site := range sites {
				url := site.SSLURL
				if url == "" {
					url = site.URL
				}
				fmt.Printf("%-30s  %s  %s\n", site.Name, site.ID, url)
			}
			return nil
		},
	}

	sitesCmd.AddCommand(listCmd, cleanupCmd, remoteCmd)
	return sitesCmd
}

func newFallbackCmd() *cobra.Command {
	var (
		prompt string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Render the deterministic fallback site for a prompt",
		Long:  "Renders the same site the service would serve if every model attempt failed, without touching any external API.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt is required")
			}

			files := fallback.Generate(prompt)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, key := range fileset.Keys {
				content := files.Get(key)
				if content == "" {
					continue
				}
				path := filepath.Join(outDir, key)
				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d bytes)\n", path, len(content))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Site description prompt")
	cmd.Flags().StringVar(&outDir, "out", "./site", "Output directory")
	return cmd
}
