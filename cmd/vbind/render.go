package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/pkg/render"
)

func renderCmd() *cobra.Command {
	var (
		configPath string
		template   string
		dataPath   string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the root template to stdout",
		Long: `Render the project's root template with its data file and print
the resulting HTML.

With --template, the given file is rendered instead of the configured
root. If no vbind.yaml is found, --template renders against --data
without any component definitions.

Examples:
  vbind render
  vbind render --pretty
  vbind render --template page.html --data page.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				if template == "" || configPath != "" {
					return err
				}
				cfg = config.New()
			}
			// Flag paths are relative to the working directory.
			if template != "" {
				if cfg.Root, err = filepath.Abs(template); err != nil {
					return err
				}
			}
			if dataPath != "" {
				if cfg.Data, err = filepath.Abs(dataPath); err != nil {
					return err
				}
			}

			app, err := vbind.New(cfg)
			if err != nil {
				return err
			}
			_, doc, err := app.Mount()
			if err != nil {
				return err
			}
			out, err := render.NewRenderer(render.RendererConfig{Pretty: pretty}).RenderToString(doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to vbind.yaml (default: search upwards)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Template file to render instead of the configured root")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON data file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")

	return cmd
}
