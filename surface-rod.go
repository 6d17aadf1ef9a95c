package solver

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodSurface implements Surface on top of a go-rod page.
type RodSurface struct {
	page    *rod.Page
	current *rod.Page
}

func NewRodSurface(page *rod.Page) *RodSurface {
	return &RodSurface{page: page, current: page}
}

// NewStealthPage launches a browser and opens a stealth page on it. The
// language becomes the browser UI language, which hcaptcha uses to pick the
// prompt wording.
func NewStealthPage(model *Model, visible bool) (*rod.Browser, *rod.Page, error) {
	u, err := launcher.New().
		Headless(!visible).
		Set("lang", model.language()).
		Launch()
	if err != nil {
		return nil, nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, nil, err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, nil, err
	}

	return browser, page, nil
}

func (s *RodSurface) WaitClickable(locator string, timeout time.Duration) bool {
	page := s.current.Timeout(timeout)
	defer page.CancelTimeout()

	element, err := page.ElementX(locator)
	if err != nil {
		return false
	}
	if err := element.WaitVisible(); err != nil {
		return false
	}
	if err := element.WaitEnabled(); err != nil {
		return false
	}
	return true
}

func (s *RodSurface) WaitPresent(locator string, timeout time.Duration) bool {
	page := s.current.Timeout(timeout)
	defer page.CancelTimeout()

	_, err := page.ElementX(locator)
	return err == nil
}

func (s *RodSurface) Find(locator string) (Element, error) {
	element, err := s.lookup(locator)
	if err != nil {
		return nil, err
	}
	return &RodElement{element: element, page: s.current}, nil
}

func (s *RodSurface) FindAll(locator string) ([]Element, error) {
	elements, err := s.current.ElementsX(locator)
	if err != nil {
		return nil, err
	}

	found := make([]Element, 0, len(elements))
	for _, element := range elements {
		found = append(found, &RodElement{element: element, page: s.current})
	}
	return found, nil
}

func (s *RodSurface) ReadText(locator string) (string, error) {
	element, err := s.lookup(locator)
	if err != nil {
		return "", err
	}
	return element.Text()
}

func (s *RodSurface) EnterFrame(locator string) error {
	elements, err := s.page.ElementsX(locator)
	if err != nil {
		return err
	}
	if elements.Empty() {
		return fmt.Errorf("solver: frame not found: %s", locator)
	}

	frame, err := elements.First().Frame()
	if err != nil {
		return err
	}

	s.current = frame
	return nil
}

func (s *RodSurface) LeaveFrame() error {
	s.current = s.page
	return nil
}

func (s *RodSurface) RunScript(source string) (string, error) {
	result, err := s.current.Eval(source)
	if err != nil {
		return "", err
	}
	return result.Value.Str(), nil
}

func (s *RodSurface) UserAgent() (string, error) {
	result, err := s.page.Eval(`() => navigator.userAgent`)
	if err != nil {
		return "", err
	}
	return result.Value.Str(), nil
}

func (s *RodSurface) PageHTML() (string, error) {
	return s.page.HTML()
}

func (s *RodSurface) lookup(locator string) (*rod.Element, error) {
	elements, err := s.current.ElementsX(locator)
	if err != nil {
		return nil, err
	}
	if elements.Empty() {
		return nil, fmt.Errorf("solver: element not found: %s", locator)
	}
	return elements.First(), nil
}

// RodElement wraps a located rod element together with the page whose mouse
// drives offset clicks.
type RodElement struct {
	element *rod.Element
	page    *rod.Page
}

func (e *RodElement) Click() error {
	return e.element.Click(proto.InputMouseButtonLeft, 1)
}

// ClickAt moves the cursor to the element center, shifts it by the offset
// and clicks there.
func (e *RodElement) ClickAt(offsetX, offsetY float64) error {
	shape, err := e.element.Shape()
	if err != nil {
		return err
	}
	box := shape.Box()

	center := proto.Point{
		X: box.X + box.Width/2,
		Y: box.Y + box.Height/2,
	}

	if err := e.page.Mouse.MoveLinear(center, 10+rand.Intn(30)); err != nil {
		return err
	}

	target := proto.Point{X: center.X + offsetX, Y: center.Y + offsetY}
	if err := e.page.Mouse.MoveLinear(target, 10+rand.Intn(10)); err != nil {
		return err
	}

	return e.page.Mouse.Click(proto.InputMouseButtonLeft, 1)
}

func (e *RodElement) Attribute(name string) (*string, error) {
	return e.element.Attribute(name)
}

func (e *RodElement) Find(selector string) (Element, error) {
	child, err := e.element.Element(selector)
	if err != nil {
		return nil, err
	}
	return &RodElement{element: child, page: e.page}, nil
}

func (e *RodElement) Size() (float64, float64, error) {
	shape, err := e.element.Shape()
	if err != nil {
		return 0, 0, err
	}
	box := shape.Box()
	return box.Width, box.Height, nil
}
