package vdom

import (
	"fmt"
	"sync"
)

// Kind tags the concrete control a node stands for. The reconciler only ever
// compares kinds for equality.
type Kind uint16

const (
	KindInvalid Kind = iota
	KindColumn
	KindRow
	KindStack
	KindCanvas
	KindScroll
	KindLabel
	KindButton
	KindCheck
	KindEntry
	KindPassword
	KindTextEditor
	KindSlider
	KindProgress
	KindSelect
	KindImage

	firstCustomKind
)

var builtinKindNames = [...]string{
	KindInvalid:    "invalid",
	KindColumn:     "column",
	KindRow:        "row",
	KindStack:      "stack",
	KindCanvas:     "canvas",
	KindScroll:     "scroll",
	KindLabel:      "label",
	KindButton:     "button",
	KindCheck:      "check",
	KindEntry:      "entry",
	KindPassword:   "password",
	KindTextEditor: "text_editor",
	KindSlider:     "slider",
	KindProgress:   "progress",
	KindSelect:     "select",
	KindImage:      "image",
}

var customKinds = struct {
	sync.Mutex
	byName map[string]Kind
	names  []string
}{byName: map[string]Kind{}}

// RegisterKind returns the kind for a control defined outside this module.
// Registering the same name twice yields the same kind.
func RegisterKind(name string) Kind {
	customKinds.Lock()
	defer customKinds.Unlock()

	if k, ok := customKinds.byName[name]; ok {
		return k
	}
	k := firstCustomKind + Kind(len(customKinds.names))
	customKinds.byName[name] = k
	customKinds.names = append(customKinds.names, name)
	return k
}

func (k Kind) String() string {
	if int(k) < len(builtinKindNames) {
		return builtinKindNames[k]
	}
	customKinds.Lock()
	defer customKinds.Unlock()
	if i := int(k - firstCustomKind); i < len(customKinds.names) {
		return customKinds.names[i]
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}
