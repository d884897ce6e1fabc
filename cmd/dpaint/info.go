package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/scene"
)

func cmdInfo(args []string) error {
	_, sc, _, err := setup("info", args, nil)
	if err != nil {
		return err
	}
	printInfo(os.Stdout, sc)
	return nil
}

func printInfo(w io.Writer, sc *scene.Scene) {
	g := sc.Gravity()
	fmt.Fprintf(w, "Scene:   %s\n", sc.Name)
	fmt.Fprintf(w, "FPS:     %g\n", sc.FPS)
	fmt.Fprintf(w, "Gravity: (%g, %g, %g)\n", g.X, g.Y, g.Z)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Objects:")
	for _, o := range sc.Objects() {
		var roles []string
		if o.Faces > 0 || o.Verts > 0 {
			roles = append(roles, fmt.Sprintf("mesh %dv/%df", o.Verts, o.Faces))
		}
		if o.Brush {
			roles = append(roles, "brush")
		}
		if o.Particles > 0 {
			roles = append(roles, fmt.Sprintf("%d particles", o.Particles))
		}
		if o.Field != "" {
			roles = append(roles, string(o.Field)+" field")
		}
		fmt.Fprintf(w, "  %-3d %-16s %s\n", o.ID, o.Name, strings.Join(roles, ", "))
	}

	for _, c := range sc.Canvases {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Canvas %s:\n", c.Name)
		for _, s := range c.Surfaces {
			st := s.Settings
			state := ""
			if st.Disabled {
				state = " (disabled)"
			}
			fmt.Fprintf(w, "  %-16s %-8s %-9s frames %d-%d", s.Name, st.Format, st.Type, st.StartFrame, st.EndFrame)
			if st.Format == dynpaint.FormatImageSeq {
				fmt.Fprintf(w, " %dpx", st.Resolution)
			}
			fmt.Fprintf(w, "%s\n", state)
		}
	}
}
