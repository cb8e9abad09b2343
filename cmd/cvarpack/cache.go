package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofplus/cvarpack/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the project build cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached builds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openProjectCache()
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s  %s\n", e.Hash[:12], e.Label, e.Created.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove all cached builds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openProjectCache()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Prune()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached build(s)\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}

func openProjectCache() (*store.Store, error) {
	m, err := loadProject()
	if err != nil {
		return nil, err
	}
	path := m.CachePath()
	if path == "" {
		return nil, fmt.Errorf("project has no build cache configured (set output.cache in cvarpack.toml)")
	}
	return store.Open(path)
}
