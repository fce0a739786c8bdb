package main

import (
	"github.com/spf13/cobra"

	"github.com/geomichelon/vtsdk/internal/vision"
)

func newSearchCmd(global *globalOptions) *cobra.Command {
	var req vision.SearchRequest
	var meta string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for a child image inside a parent image",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMeta(meta)
			if err != nil {
				return err
			}
			req.Meta = m

			e, err := global.newEngine()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e.Search(req))
		},
	}

	cmd.Flags().StringVar(&req.ParentImage, "parent", "", "Parent image path")
	cmd.Flags().StringVar(&req.ChildImage, "child", "", "Child image path")
	cmd.Flags().StringVar(&meta, "meta", "", "JSON test metadata passed through unchanged")
	cmd.MarkFlagRequired("parent")
	cmd.MarkFlagRequired("child")
	return cmd
}

func newLocateCmd(global *globalOptions) *cobra.Command {
	var req vision.LocateRequest
	var meta string

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Report where one element sits relative to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMeta(meta)
			if err != nil {
				return err
			}
			req.Meta = m

			e, err := global.newEngine()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e.Locate(req))
		},
	}

	cmd.Flags().StringVar(&req.ContainerImage, "container", "", "Container image path")
	cmd.Flags().StringVar(&req.MainImage, "main", "", "Main element image path")
	cmd.Flags().StringVar(&req.RelativeImage, "relative", "", "Relative element image path")
	cmd.Flags().StringVar(&meta, "meta", "", "JSON test metadata passed through unchanged")
	cmd.MarkFlagRequired("container")
	cmd.MarkFlagRequired("main")
	cmd.MarkFlagRequired("relative")
	return cmd
}
