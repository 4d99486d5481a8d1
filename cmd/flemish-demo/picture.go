package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"flemish/app"
	"flemish/internal/imaging"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
	"flemish/view/picture"
)

type pictureMsg struct {
	loaded  bool
	resized bool
	handle  imaging.Handle
	scale   float64
	err     error
}

type gallery struct {
	Path     string
	Table    *imaging.Table
	Original imaging.Handle
	Shown    imaging.Handle
	Scale    float64
	Width    int
	Height   int
	Status   string
}

func updatePicture(m *gallery, msg pictureMsg) task.Task[pictureMsg] {
	switch {
	case msg.err != nil:
		m.Status = msg.err.Error()
	case msg.loaded:
		m.Original = msg.handle
		m.Shown = msg.handle
		m.Width, m.Height, _ = m.Table.Size(msg.handle)
		m.Status = fmt.Sprintf("%s: %dx%d", m.Path, m.Width, m.Height)
	case msg.resized:
		if m.Shown != m.Original {
			m.Table.Release(m.Shown)
		}
		m.Shown = msg.handle
		w, h, _ := m.Table.Size(msg.handle)
		m.Status = fmt.Sprintf("%s: %dx%d (%.0f%%)", m.Path, w, h, m.Scale*100)
	case msg.scale > 0:
		m.Scale = msg.scale
		if m.Original == 0 {
			break
		}
		return resizePicture(m.Table, m.Original, m.Width, m.Height, m.Scale)
	}
	return task.None[pictureMsg]()
}

// fill shows scaled copies at their pixel size and the original fitted to
// the window.
func (m gallery) fill() canvas.ImageFill {
	if m.Shown != m.Original {
		return canvas.ImageFillOriginal
	}
	return canvas.ImageFillContain
}

func viewPicture(m gallery) vdom.Node[pictureMsg] {
	return view.Column[pictureMsg](
		picture.New[pictureMsg](m.Table, m.Shown).Fill(m.fill()),
		view.Row[pictureMsg](
			view.Label[pictureMsg]("Scale", vdom.Fixed(60)),
			view.Slider[pictureMsg](0.1, 2, m.Scale, vdom.Disabled(m.Original == 0)).
				Step(0.05).
				OnChange(func(v float64) pictureMsg { return pictureMsg{scale: v} }),
		).With(vdom.Fixed(40)),
		view.Label[pictureMsg](m.Status, vdom.Fixed(28), vdom.WithImportance(widget.LowImportance)),
	).Margins(8, 8)
}

// loadPicture decodes path, or standard input for "-", and shrinks it to
// fit inside bound.
func loadPicture(table *imaging.Table, path string, bound image.Point) task.Task[pictureMsg] {
	return task.PerformAsync(func(context.Context) pictureMsg {
		var h imaging.Handle
		var err error
		if path == "-" {
			var data []byte
			if data, err = io.ReadAll(os.Stdin); err == nil {
				h, err = table.Decode(data)
			}
		} else {
			h, err = table.Load(path)
		}
		if err != nil {
			return pictureMsg{err: err}
		}
		if bound.X > 0 && bound.Y > 0 {
			if err := table.Scale(h, bound.X, bound.Y, true, false); err != nil {
				table.Release(h)
				return pictureMsg{err: err}
			}
		}
		return pictureMsg{loaded: true, handle: h}
	})
}

func resizePicture(table *imaging.Table, original imaging.Handle, width, height int, scale float64) task.Task[pictureMsg] {
	w := max(1, int(float64(width)*scale))
	h := max(1, int(float64(height)*scale))
	return task.PerformAsync(func(context.Context) pictureMsg {
		resized, err := table.CopySized(original, w, h)
		if err != nil {
			return pictureMsg{err: err}
		}
		return pictureMsg{resized: true, handle: resized}
	})
}

func newPictureCmd(opts *options) *cobra.Command {
	var maxWidth, maxHeight int
	cmd := &cobra.Command{
		Use:   "picture <image|->",
		Short: "Show an image and rescale it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			table := imaging.NewTable(nil)
			defer table.Close()

			bound := image.Pt(maxWidth, maxHeight)
			return app.New("Picture", updatePicture, viewPicture).
				WithSettings(s).
				WithInit(loadPicture(table, args[0], bound)).
				RunWith(gallery{Path: args[0], Table: table, Scale: 1})
		},
	}
	cmd.Flags().IntVar(&maxWidth, "max-width", 1024, "shrink larger images to this width")
	cmd.Flags().IntVar(&maxHeight, "max-height", 768, "shrink larger images to this height")
	return cmd
}
