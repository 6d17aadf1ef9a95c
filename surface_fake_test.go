package solver

import (
	"fmt"
	"time"
)

// fakeSurface is a scripted Surface implementation recording every action the
// solver takes against the widget.
type fakeSurface struct {
	// Sequenced WaitClickable answers per locator, falling back to the
	// static map once drained
	clickableSeq map[string][]bool
	clickable    map[string]bool

	present map[string]bool
	texts   map[string]string
	single  map[string]*fakeElement
	lists   map[string][]*fakeElement

	// RunScript answers, drained in order, then ""
	scripts []string

	ua   string
	html string

	actions []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		clickableSeq: map[string][]bool{},
		clickable:    map[string]bool{},
		present:      map[string]bool{},
		texts:        map[string]string{},
		single:       map[string]*fakeElement{},
		lists:        map[string][]*fakeElement{},
		ua:           "test-agent",
	}
}

func (f *fakeSurface) element(name string) *fakeElement {
	return &fakeElement{
		name:     name,
		surface:  f,
		attrs:    map[string]string{},
		children: map[string]*fakeElement{},
	}
}

func (f *fakeSurface) WaitClickable(locator string, _ time.Duration) bool {
	if queue := f.clickableSeq[locator]; len(queue) > 0 {
		f.clickableSeq[locator] = queue[1:]
		return queue[0]
	}
	return f.clickable[locator]
}

func (f *fakeSurface) WaitPresent(locator string, _ time.Duration) bool {
	if value, ok := f.present[locator]; ok {
		return value
	}
	return true
}

func (f *fakeSurface) Find(locator string) (Element, error) {
	element, ok := f.single[locator]
	if !ok {
		return nil, fmt.Errorf("fake: no element at %s", locator)
	}
	return element, nil
}

func (f *fakeSurface) FindAll(locator string) ([]Element, error) {
	list := f.lists[locator]
	found := make([]Element, 0, len(list))
	for _, element := range list {
		found = append(found, element)
	}
	return found, nil
}

func (f *fakeSurface) ReadText(locator string) (string, error) {
	text, ok := f.texts[locator]
	if !ok {
		return "", fmt.Errorf("fake: no text at %s", locator)
	}
	return text, nil
}

func (f *fakeSurface) EnterFrame(locator string) error {
	f.actions = append(f.actions, "enter-frame")
	return nil
}

func (f *fakeSurface) LeaveFrame() error {
	f.actions = append(f.actions, "leave-frame")
	return nil
}

func (f *fakeSurface) RunScript(string) (string, error) {
	if len(f.scripts) == 0 {
		return "", nil
	}
	out := f.scripts[0]
	f.scripts = f.scripts[1:]
	return out, nil
}

func (f *fakeSurface) UserAgent() (string, error) {
	return f.ua, nil
}

func (f *fakeSurface) PageHTML() (string, error) {
	return f.html, nil
}

// clicks returns only the click actions, in order.
func (f *fakeSurface) clicks() []string {
	var clicked []string
	for _, action := range f.actions {
		if len(action) > 5 && action[:5] == "click" {
			clicked = append(clicked, action)
		}
	}
	return clicked
}

type fakeElement struct {
	name     string
	surface  *fakeSurface
	attrs    map[string]string
	children map[string]*fakeElement
	width    float64
	height   float64
}

func (e *fakeElement) Click() error {
	e.surface.actions = append(e.surface.actions, "click "+e.name)
	return nil
}

func (e *fakeElement) ClickAt(offsetX, offsetY float64) error {
	e.surface.actions = append(e.surface.actions, fmt.Sprintf("clickAt %s %v %v", e.name, offsetX, offsetY))
	return nil
}

func (e *fakeElement) Attribute(name string) (*string, error) {
	value, ok := e.attrs[name]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (e *fakeElement) Find(selector string) (Element, error) {
	child, ok := e.children[selector]
	if !ok {
		return nil, fmt.Errorf("fake: no child %s under %s", selector, e.name)
	}
	return child, nil
}

func (e *fakeElement) Size() (float64, float64, error) {
	return e.width, e.height, nil
}
