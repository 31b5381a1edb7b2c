package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/project"
	"github.com/schollz/collidertracker/internal/serialize"
	"github.com/schollz/collidertracker/internal/wavexport"
)

func newRenderCmd() *cobra.Command {
	var (
		loadPath   string
		outputPath string
		sampleRate int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a project to a 16-bit PCM stereo WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadOrNewProject(loadPath)
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}
			p.SetSampleRate(coretypes.NewSampleRate(sampleRate))
			p.Play()

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()

			if err := wavexport.Export(p, f, sampleRate); err != nil {
				return fmt.Errorf("export wav: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loadPath, "load", "", "load a saved project file; empty renders a blank project")
	cmd.Flags().StringVar(&outputPath, "output", "out.wav", "output WAV file path")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "output sample rate in Hz")

	return cmd
}

func loadOrNewProject(path string) (*project.Project, error) {
	if path == "" {
		return project.New(), nil
	}
	return serialize.LoadFromFile(path, buildRegistry())
}
