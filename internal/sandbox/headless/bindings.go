package headless

import (
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// injectDOM exposes the parsed tree as document
func (s *session) injectDOM() {
	vm := s.vm
	document := vm.NewObject()
	s.document = document
	s.eventTarget(document)

	s.accessor(document, "body", func() goja.Value { return s.wrap(s.dom.Body()) }, nil)
	s.accessor(document, "head", func() goja.Value { return s.wrap(s.dom.Element("head")) }, nil)
	s.accessor(document, "documentElement", func() goja.Value { return s.wrap(s.dom.Element("html")) }, nil)
	s.accessor(document, "readyState", func() goja.Value { return vm.ToValue(s.readyState) }, nil)
	s.accessor(document, "title",
		func() goja.Value { return vm.ToValue(strings.TrimSpace(textContent(s.dom.Element("title")))) },
		func(v goja.Value) {
			if title := s.dom.Element("title"); title != nil {
				setTextContent(title, v.String())
			}
		})

	_ = document.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return s.wrap(newElement(call.Argument(0).String()))
	})
	_ = document.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return s.wrap(&html.Node{Type: html.TextNode, Data: call.Argument(0).String()})
	})
	_ = document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return s.wrap(s.dom.ElementByID(call.Argument(0).String()))
	})
	s.queryMethods(document, s.dom.Root)

	_ = vm.Set("document", document)
}

// queryMethods installs the selector lookups scoped to root()
func (s *session) queryMethods(obj *goja.Object, root func() *html.Node) {
	_ = obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		found := s.dom.Query(root(), call.Argument(0).String())
		if len(found) == 0 {
			return goja.Null()
		}
		return s.wrap(found[0])
	})
	_ = obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return s.wrapAll(s.dom.Query(root(), call.Argument(0).String()))
	})
	_ = obj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		var classes []string
		for _, c := range strings.Fields(call.Argument(0).String()) {
			classes = append(classes, "."+c)
		}
		if len(classes) == 0 {
			return s.wrapAll(nil)
		}
		return s.wrapAll(s.dom.Query(root(), strings.Join(classes, "")))
	})
	_ = obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return s.wrapAll(s.dom.Query(root(), call.Argument(0).String()))
	})
}

// wrap returns the JS object for n, creating it on first use. The same
// node always maps to the same object.
func (s *session) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := s.objects[n]; ok {
		return obj
	}

	obj := s.vm.NewObject()
	s.objects[n] = obj
	s.nodes[obj] = n

	s.bindNode(obj, n)
	if n.Type == html.ElementNode {
		s.bindElement(obj, n)
	}
	return obj
}

func (s *session) wrapAll(nodes []*html.Node) goja.Value {
	values := make([]interface{}, len(nodes))
	for i, n := range nodes {
		values[i] = s.wrap(n)
	}
	return s.vm.NewArray(values...)
}

// unwrap maps a JS value back to its node
func (s *session) unwrap(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return s.nodes[obj]
}

func (s *session) bindNode(obj *goja.Object, n *html.Node) {
	vm := s.vm

	s.accessor(obj, "nodeType", func() goja.Value {
		if n.Type == html.TextNode {
			return vm.ToValue(3)
		}
		return vm.ToValue(1)
	}, nil)
	s.accessor(obj, "parentNode", func() goja.Value { return s.wrap(n.Parent) }, nil)
	s.accessor(obj, "parentElement", func() goja.Value { return s.wrap(n.Parent) }, nil)
	s.accessor(obj, "textContent",
		func() goja.Value { return vm.ToValue(textContent(n)) },
		func(v goja.Value) { setTextContent(n, v.String()) })

	_ = obj.Set("remove", func(goja.FunctionCall) goja.Value {
		detach(n)
		return goja.Undefined()
	})
}

func (s *session) bindElement(obj *goja.Object, n *html.Node) {
	vm := s.vm

	s.accessor(obj, "tagName", func() goja.Value { return vm.ToValue(strings.ToUpper(n.Data)) }, nil)
	s.accessor(obj, "nodeName", func() goja.Value { return vm.ToValue(strings.ToUpper(n.Data)) }, nil)
	s.attrAccessor(obj, n, "id", "id")
	s.attrAccessor(obj, n, "className", "class")
	s.attrAccessor(obj, n, "value", "value")
	s.attrAccessor(obj, n, "src", "src")
	s.attrAccessor(obj, n, "href", "href")
	s.accessor(obj, "innerHTML",
		func() goja.Value { return vm.ToValue(innerHTML(n)) },
		func(v goja.Value) {
			if err := setInnerHTML(n, v.String()); err != nil {
				panic(vm.NewTypeError("innerHTML: %v", err))
			}
		})
	s.accessor(obj, "outerHTML", func() goja.Value { return vm.ToValue(outerHTML(n)) }, nil)
	s.accessor(obj, "innerText",
		func() goja.Value { return vm.ToValue(textContent(n)) },
		func(v goja.Value) { setTextContent(n, v.String()) })
	s.accessor(obj, "children", func() goja.Value { return s.wrapAll(elementChildren(n)) }, nil)
	s.accessor(obj, "firstElementChild", func() goja.Value {
		if children := elementChildren(n); len(children) > 0 {
			return s.wrap(children[0])
		}
		return goja.Null()
	}, nil)

	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := getAttr(n, strings.ToLower(call.Argument(0).String())); ok {
			return vm.ToValue(v)
		}
		return goja.Null()
	})
	_ = obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(n, call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		removeAttr(n, call.Argument(0).String())
		return goja.Undefined()
	})
	_ = obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		_, ok := getAttr(n, strings.ToLower(call.Argument(0).String()))
		return vm.ToValue(ok)
	})
	_ = obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := s.unwrap(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("appendChild: argument is not a node"))
		}
		if !appendChild(n, child) {
			panic(vm.NewTypeError("appendChild: the new child is an ancestor of the parent"))
		}
		return call.Argument(0)
	})
	_ = obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := s.unwrap(call.Argument(0))
		if child == nil || child.Parent != n {
			panic(vm.NewTypeError("removeChild: the node is not a child of this node"))
		}
		n.RemoveChild(child)
		return call.Argument(0)
	})
	_ = obj.Set("getContext", func(goja.FunctionCall) goja.Value {
		if n.Data != "canvas" {
			return goja.Null()
		}
		return s.canvasContext()
	})

	s.queryMethods(obj, func() *html.Node { return n })
	s.eventTarget(obj)

	classList := vm.NewObject()
	_ = classList.Set("add", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			toggleClass(n, arg.String(), true)
		}
		return goja.Undefined()
	})
	_ = classList.Set("remove", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			toggleClass(n, arg.String(), false)
		}
		return goja.Undefined()
	})
	_ = classList.Set("contains", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hasClass(n, call.Argument(0).String()))
	})
	_ = classList.Set("toggle", func(call goja.FunctionCall) goja.Value {
		class := call.Argument(0).String()
		on := !hasClass(n, class)
		if len(call.Arguments) > 1 {
			on = call.Argument(1).ToBoolean()
		}
		toggleClass(n, class, on)
		return vm.ToValue(on)
	})
	_ = obj.Set("classList", classList)

	// Inline styles have no layout to affect here
	_ = obj.Set("style", vm.NewObject())
}

// attrAccessor reflects a property onto an attribute
func (s *session) attrAccessor(obj *goja.Object, n *html.Node, prop, attr string) {
	s.accessor(obj, prop,
		func() goja.Value {
			v, _ := getAttr(n, attr)
			return s.vm.ToValue(v)
		},
		func(v goja.Value) { setAttr(n, attr, v.String()) })
}

func (s *session) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := s.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})

	var setter goja.Value
	if set != nil {
		setter = s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}

	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// canvasContext returns a 2D context whose drawing calls do nothing
func (s *session) canvasContext() goja.Value {
	vm := s.vm
	ctx := vm.NewObject()
	for _, name := range []string{
		"arc", "arcTo", "beginPath", "bezierCurveTo", "clearRect", "clip", "closePath",
		"drawImage", "ellipse", "fill", "fillRect", "fillText", "lineTo", "moveTo",
		"quadraticCurveTo", "rect", "restore", "rotate", "save", "scale", "setLineDash",
		"setTransform", "stroke", "strokeRect", "strokeText", "transform", "translate",
	} {
		_ = ctx.Set(name, noop)
	}
	_ = ctx.Set("measureText", func(goja.FunctionCall) goja.Value {
		metrics := vm.NewObject()
		_ = metrics.Set("width", 0)
		return metrics
	})
	gradient := func(goja.FunctionCall) goja.Value {
		g := vm.NewObject()
		_ = g.Set("addColorStop", noop)
		return g
	}
	_ = ctx.Set("createLinearGradient", gradient)
	_ = ctx.Set("createRadialGradient", gradient)
	return ctx
}
