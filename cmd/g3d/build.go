package main

import (
	"fmt"
	"os"

	"github.com/chazu/g3d/pkg/engine"
	"github.com/chazu/g3d/pkg/kernel/sdfx"
	"github.com/chazu/g3d/pkg/tessellate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBuildCmd() *subCommand {
	sc := &subCommand{}
	sc.Cmd = &cobra.Command{
		Use:   "build SCRIPT OUT",
		Short: "Evaluate a scene script and write its tessellation as a G3D file",
		Long: `
Build evaluates a scene script, meshes every placed part with the sdfx kernel
and writes one triangle mesh. Each face carries the object id of its part and
the material id of the part's material.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(sc.Conf)
			if err != nil {
				return err
			}
			defer log.Sync()

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			eng := engine.NewEngine(
				engine.WithTimeout(sc.Conf.GetDuration("timeout")),
				engine.WithLogger(log))
			res, err := eng.EvaluateContext(cmd.Context(), string(src))
			if err != nil {
				return errors.Wrapf(err, "evaluating %s", args[0])
			}
			stderr := cmd.ErrOrStderr()
			for _, w := range res.Warnings {
				fmt.Fprintf(stderr, "%s: warning: %s\n", args[0], w.Message)
			}
			if len(res.Errors) > 0 {
				for _, e := range res.Errors {
					fmt.Fprintf(stderr, "%s: %s\n", args[0], e)
				}
				return errors.Errorf("%s: %d evaluation errors", args[0], len(res.Errors))
			}

			k := sdfx.New(sdfx.WithMeshCells(sc.Conf.GetInt("cells")))
			g, err := tessellate.Tessellate(res.Scene, k, tessellate.WithLogger(log))
			if err != nil {
				return err
			}
			if err := writeContainer(args[1], g.G3D, sc.Conf.GetBool("compress")); err != nil {
				return err
			}
			log.Info("built",
				zap.String("script", args[0]),
				zap.String("out", args[1]),
				zap.Strings("materials", res.Scene.Materials))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d vertices, %d faces)\n",
				args[1], g.NumVertices(), g.NumFaces)
			return nil
		},
	}
	flags := sc.Cmd.Flags()
	flags.Duration("timeout", engine.EvalTimeout, "Maximum script evaluation time.")
	flags.Int("cells", sdfx.DefaultMeshCells, "Marching cubes cells along the longest axis of each part.")
	flags.Bool("compress", false, "Snappy-compress the output.")
	return sc
}
