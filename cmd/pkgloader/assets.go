// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgloader/pkgloader/pkg/loader"
	"github.com/pkgloader/pkgloader/pkg/processor"
)

func newAssetsCommand(app *App) *cobra.Command {
	var (
		files     bool
		normalize bool
		banner    string
	)

	cmd := &cobra.Command{
		Use:   "assets <css|js> [package...]",
		Short: "Print the aggregated asset data or file list of a kind",
		Long: `Import packages and print the aggregated inline data of one asset kind
after post-processing, or with --files the registered asset files.
Without packages the configured imports are used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := loader.ParseKind(args[0])
			if err != nil {
				return app.fail(&loader.Error{Op: "select asset kind", Path: args[0], Err: err})
			}

			l, cfg, err := app.newLoader(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			var chain processor.Chain
			if normalize && kind == loader.KindStyle {
				chain = append(chain, processor.CSSNormalizer{})
			}
			if banner != "" {
				chain = append(chain, processor.Banner{Text: banner})
			}
			if len(chain) > 0 {
				if err := l.RegisterProcessor(kind.String(), chain); err != nil {
					return app.fail(err)
				}
			}

			if err := importAll(cmd.Context(), app.stderr, l, packageRefs(args[1:], cfg)); err != nil {
				return app.fail(err)
			}

			if files {
				for _, file := range l.AssetFiles(kind) {
					fmt.Fprintln(app.stdout, file)
				}
				return nil
			}
			data, err := l.AssetData(kind)
			if err != nil {
				return app.fail(err)
			}
			if strings.TrimSpace(data) != "" {
				fmt.Fprintln(app.stdout, data)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&files, "files", false, "list registered asset files instead of inline data")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "re-serialize aggregated CSS")
	cmd.Flags().StringVar(&banner, "banner", "", "prefix aggregated data with a comment")
	return cmd
}
