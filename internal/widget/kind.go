package widget

import "strings"

// Kind is the closed set of widget variants the analyzers reason about.
// Raw toolkit type names are mapped onto a Kind once, when the tree is built.
type Kind int

const (
	KindOther Kind = iota
	KindWindow
	KindContainer
	KindScrollable
	KindTabView
	KindButton
	KindEntry
	KindTextbox
	KindLabel
	KindCheckbox
	KindRadio
	KindSwitch
	KindSlider
	KindSelection
	KindSegmented
	KindProgress
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindContainer:
		return "container"
	case KindScrollable:
		return "scrollable"
	case KindTabView:
		return "tabview"
	case KindButton:
		return "button"
	case KindEntry:
		return "entry"
	case KindTextbox:
		return "textbox"
	case KindLabel:
		return "label"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindSwitch:
		return "switch"
	case KindSlider:
		return "slider"
	case KindSelection:
		return "selection"
	case KindSegmented:
		return "segmented"
	case KindProgress:
		return "progress"
	default:
		return "other"
	}
}

var kindsByType = map[string]Kind{
	"ctk":                KindWindow,
	"tk":                 KindWindow,
	"toplevel":           KindWindow,
	"ctktoplevel":        KindWindow,
	"ctkframe":           KindContainer,
	"frame":              KindContainer,
	"labelframe":         KindContainer,
	"panedwindow":        KindContainer,
	"canvas":             KindContainer,
	"ctkscrollableframe": KindScrollable,
	"ctktabview":         KindTabView,
	"notebook":           KindTabView,
	"ctkbutton":          KindButton,
	"button":             KindButton,
	"ctkentry":           KindEntry,
	"entry":              KindEntry,
	"spinbox":            KindEntry,
	"ctktextbox":         KindTextbox,
	"text":               KindTextbox,
	"ctklabel":           KindLabel,
	"label":              KindLabel,
	"message":            KindLabel,
	"ctkcheckbox":        KindCheckbox,
	"checkbutton":        KindCheckbox,
	"ctkradiobutton":     KindRadio,
	"radiobutton":        KindRadio,
	"ctkswitch":          KindSwitch,
	"ctkslider":          KindSlider,
	"scale":              KindSlider,
	"ctkcombobox":        KindSelection,
	"ctkoptionmenu":      KindSelection,
	"combobox":           KindSelection,
	"optionmenu":         KindSelection,
	"listbox":            KindSelection,
	"ctksegmentedbutton": KindSegmented,
	"ctkprogressbar":     KindProgress,
	"progressbar":        KindProgress,
}

// KindOf maps a toolkit type name ("CTkButton", "ttk.Entry", "Frame") to its Kind.
func KindOf(widgetType string) Kind {
	t := strings.ToLower(strings.TrimSpace(widgetType))
	t = strings.TrimPrefix(t, "ttk.")
	t = strings.TrimPrefix(t, "tkinter.")
	if k, ok := kindsByType[t]; ok {
		return k
	}
	return KindOther
}

// IsInteractive reports whether widgets of this kind accept user input.
func (k Kind) IsInteractive() bool {
	switch k {
	case KindButton, KindEntry, KindTextbox, KindCheckbox, KindRadio,
		KindSwitch, KindSlider, KindSelection, KindSegmented:
		return true
	}
	return false
}

// IsFocusable reports whether the kind takes keyboard focus by default.
func (k Kind) IsFocusable() bool {
	return k.IsInteractive()
}

func (k Kind) IsEntryLike() bool {
	return k == KindEntry || k == KindTextbox
}

func (k Kind) IsLabelLike() bool {
	return k == KindLabel
}

func (k Kind) IsButton() bool {
	return k == KindButton
}

// IsWindow reports whether the kind is a top-level window.
func (k Kind) IsWindow() bool {
	return k == KindWindow
}

// IsWrapper reports whether the kind is a toolkit-owned wrapper whose
// single child is structural (scroll area, tab page).
func (k Kind) IsWrapper() bool {
	return k == KindScrollable || k == KindTabView
}

// CarriesText reports whether the kind renders its text property.
func (k Kind) CarriesText() bool {
	switch k {
	case KindButton, KindLabel, KindCheckbox, KindRadio, KindSwitch,
		KindEntry, KindTextbox, KindSelection, KindSegmented:
		return true
	}
	return false
}
