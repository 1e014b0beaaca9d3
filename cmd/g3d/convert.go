package main

import (
	"fmt"

	"github.com/chazu/g3d/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConvertCmd() *subCommand {
	sc := &subCommand{}
	sc.Cmd = &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a G3D file, optionally triangulating, welding and compacting it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(sc.Conf)
			if err != nil {
				return err
			}
			defer log.Sync()

			c, err := readContainer(args[0])
			if err != nil {
				return err
			}
			g, err := mesh.New(c)
			if err != nil {
				return errors.Wrapf(err, "%s", args[0])
			}
			before := g.NumVertices()
			if g, err = convert(g, sc.Conf.GetBool("triangulate"), sc.Conf.GetBool("weld"),
				sc.Conf.GetBool("compact")); err != nil {
				return err
			}
			if err := writeContainer(args[1], g.G3D, sc.Conf.GetBool("compress")); err != nil {
				return err
			}
			log.Info("converted",
				zap.String("in", args[0]),
				zap.String("out", args[1]),
				zap.Int("vertices_before", before),
				zap.Int("vertices", g.NumVertices()),
				zap.Int("faces", g.NumFaces))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d vertices, %d faces)\n",
				args[1], g.NumVertices(), g.NumFaces)
			return nil
		},
	}
	flags := sc.Cmd.Flags()
	flags.Bool("triangulate", false, "Fan-triangulate every face.")
	flags.Bool("weld", false, "Merge vertices with identical attribute records.")
	flags.Bool("compact", false, "Drop vertices no face references.")
	flags.Bool("compress", false, "Snappy-compress the output.")
	return sc
}

// convert runs the selected pipeline stages in a fixed order.
func convert(g *mesh.Geometry, triangulate, weld, compact bool) (*mesh.Geometry, error) {
	var err error
	if triangulate {
		if g, err = g.ToTriMesh(); err != nil {
			return nil, errors.Wrap(err, "triangulate")
		}
	}
	if weld {
		if g, err = g.WeldVertices(); err != nil {
			return nil, errors.Wrap(err, "weld")
		}
	}
	if compact {
		if g, err = g.RemoveUnusedVertices(); err != nil {
			return nil, errors.Wrap(err, "compact")
		}
	}
	return g, nil
}
