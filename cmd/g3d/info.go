package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/g3d/pkg/g3d"
	"github.com/spf13/cobra"
)

func newInfoCmd() *subCommand {
	sc := &subCommand{}
	sc.Cmd = &cobra.Command{
		Use:   "info FILE",
		Short: "Print the header and attribute table of a G3D file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readContainer(args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), g)
		},
	}
	return sc
}

func printInfo(out io.Writer, g *g3d.G3D) error {
	fmt.Fprintf(out, "header:   %s\n", g.Header())
	fmt.Fprintf(out, "vertices: %d\n", g.NumVertices())
	fmt.Fprintf(out, "corners:  %d\n", g.NumCorners())
	if fl, err := g.FaceLayout(); err != nil {
		fmt.Fprintf(out, "faces:    invalid layout (%v)\n", err)
	} else if fl.PointsPerFace > 0 {
		fmt.Fprintf(out, "faces:    %d (%d points each)\n", fl.NumFaces, fl.PointsPerFace)
	} else {
		fmt.Fprintf(out, "faces:    %d (variable size)\n", fl.NumFaces)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESCRIPTOR\tCOUNT\tBYTES")
	for _, a := range g.Attributes() {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", a.Descriptor, a.Count(), a.ByteLength())
	}
	return tw.Flush()
}
