package main

import (
	"fmt"

	"github.com/chazu/g3d/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCmd() *subCommand {
	sc := &subCommand{}
	sc.Cmd = &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a G3D file against the schema",
		Long: `
Validate reports every schema violation in the file and exits non-zero if
there is any. Duplicate and degenerate faces are reported as warnings.`,
		Args: cobra.ExactArgs(1),
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
			if err := c.Validate(); err != nil {
				return errors.Wrapf(err, "%s", args[0])
			}
			g, err := mesh.New(c)
			if err != nil {
				return errors.Wrapf(err, "%s", args[0])
			}
			for _, group := range g.DuplicateFaces() {
				log.Warn("duplicate faces", zap.Ints("faces", group))
			}
			if bad := g.DegenerateFaces(); len(bad) > 0 {
				log.Warn("degenerate faces", zap.Ints("faces", bad))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d vertices, %d faces)\n",
				args[0], g.NumVertices(), g.NumFaces)
			return nil
		},
	}
	return sc
}
