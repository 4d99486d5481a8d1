package vdom

import (
	"fyne.io/fyne/v2"
)

// FlexLayout stacks objects along one axis. Objects pinned with SetFixed keep
// their size on the main axis; the rest share what is left equally. Every
// object is stretched across the cross axis.
type FlexLayout struct {
	horizontal bool
	padding    float32
	margins    fyne.Size
	fixed      map[fyne.CanvasObject]float32
}

// NewColumnLayout lays objects out top to bottom.
func NewColumnLayout(padding float32) *FlexLayout {
	return &FlexLayout{padding: padding, fixed: make(map[fyne.CanvasObject]float32)}
}

// NewRowLayout lays objects out left to right.
func NewRowLayout(padding float32) *FlexLayout {
	l := NewColumnLayout(padding)
	l.horizontal = true
	return l
}

// SetMargins sets the empty border kept around the children, per side.
func (l *FlexLayout) SetMargins(horizontal, vertical float32) {
	l.margins = fyne.NewSize(horizontal, vertical)
}

// SetPadding sets the gap left between neighbouring children.
func (l *FlexLayout) SetPadding(padding float32) {
	l.padding = padding
}

func (l *FlexLayout) SetFixed(obj fyne.CanvasObject, size float32) {
	l.fixed[obj] = size
}

func (l *FlexLayout) ClearFixed(obj fyne.CanvasObject) {
	delete(l.fixed, obj)
}

func (l *FlexLayout) Fixed(obj fyne.CanvasObject) (float32, bool) {
	size, ok := l.fixed[obj]
	return size, ok
}

func (l *FlexLayout) main(s fyne.Size) float32 {
	if l.horizontal {
		return s.Width
	}
	return s.Height
}

func (l *FlexLayout) cross(s fyne.Size) float32 {
	if l.horizontal {
		return s.Height
	}
	return s.Width
}

func (l *FlexLayout) size(main, cross float32) fyne.Size {
	if l.horizontal {
		return fyne.NewSize(main, cross)
	}
	return fyne.NewSize(cross, main)
}

func (l *FlexLayout) pos(main, cross float32) fyne.Position {
	if l.horizontal {
		return fyne.NewPos(main, cross)
	}
	return fyne.NewPos(cross, main)
}

func (l *FlexLayout) Layout(objects []fyne.CanvasObject, containerSize fyne.Size) {
	visible := visibleObjects(objects)
	if len(visible) == 0 {
		return
	}

	inner := fyne.NewSize(containerSize.Width-2*l.margins.Width, containerSize.Height-2*l.margins.Height)
	free := l.main(inner) - l.padding*float32(len(visible)-1)
	flexible := 0
	for _, obj := range visible {
		if size, ok := l.fixed[obj]; ok {
			free -= size
		} else {
			flexible++
		}
	}

	share := float32(0)
	if flexible > 0 && free > 0 {
		share = free / float32(flexible)
	}

	offset := l.main(l.margins)
	crossOffset := l.cross(l.margins)
	crossSize := l.cross(inner)
	for _, obj := range visible {
		length, ok := l.fixed[obj]
		if !ok {
			length = share
		}
		obj.Resize(l.size(length, crossSize))
		obj.Move(l.pos(offset, crossOffset))
		offset += length + l.padding
	}
}

func (l *FlexLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	visible := visibleObjects(objects)
	mainTotal := float32(0)
	crossMax := float32(0)

	for _, obj := range visible {
		objMin := obj.MinSize()
		if size, ok := l.fixed[obj]; ok {
			mainTotal += size
		} else {
			mainTotal += l.main(objMin)
		}
		if c := l.cross(objMin); c > crossMax {
			crossMax = c
		}
	}
	if len(visible) > 1 {
		mainTotal += l.padding * float32(len(visible)-1)
	}

	return l.size(mainTotal+2*l.main(l.margins), crossMax+2*l.cross(l.margins))
}

func visibleObjects(objects []fyne.CanvasObject) []fyne.CanvasObject {
	visible := make([]fyne.CanvasObject, 0, len(objects))
	for _, obj := range objects {
		if obj.Visible() {
			visible = append(visible, obj)
		}
	}
	return visible
}
