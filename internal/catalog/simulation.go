package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

// IsSplit reports whether the record uses the html/css/js fields
func (s Simulation) IsSplit() bool {
	return s.HTMLCode != "" || s.CSSCode != "" || s.JSCode != ""
}

// IsEmpty reports whether the record carries no code in either shape
func (s Simulation) IsEmpty() bool {
	return !s.IsSplit() && strings.TrimSpace(s.Code) == ""
}

// Unit normalizes the record into a sandbox unit.
//
// Split fields win when any of them is set. Otherwise Code is treated as a
// complete document: its <style> text becomes the style fragment, inline
// classic scripts are joined in document order into the script fragment,
// and everything else in the body becomes markup. Stylesheet links and
// external scripts from <head> are kept at the top of the markup so they
// still load. An empty record yields an empty unit.
func (s Simulation) Unit() sandbox.Unit {
	unit := sandbox.Unit{
		ID:    s.ID.String(),
		Title: s.Title,
	}

	if s.IsSplit() {
		unit.Markup = s.HTMLCode
		unit.Style = s.CSSCode
		unit.Script = s.JSCode
		return unit
	}
	if strings.TrimSpace(s.Code) == "" {
		return unit
	}

	unit.Markup, unit.Style, unit.Script = splitDocument(s.Code)
	return unit
}

func splitDocument(code string) (markup, style, script string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(code))
	if err != nil {
		return code, "", ""
	}

	var styles []string
	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		styles = append(styles, strings.TrimSpace(sel.Text()))
		sel.Remove()
	})

	var scripts []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external || !inlineScript(sel) {
			return
		}
		scripts = append(scripts, strings.TrimSpace(sel.Text()))
		sel.Remove()
	})

	var head []string
	doc.Find(`head link[rel="stylesheet"], head script`).Each(func(_ int, sel *goquery.Selection) {
		if outer, err := goquery.OuterHtml(sel); err == nil {
			head = append(head, outer)
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		body = ""
	}
	body = strings.TrimSpace(body)
	if len(head) > 0 {
		body = strings.Join(head, "\n") + "\n" + body
	}

	return body, strings.Join(nonEmpty(styles), "\n"), strings.Join(nonEmpty(scripts), "\n;\n")
}

func inlineScript(sel *goquery.Selection) bool {
	t, ok := sel.Attr("type")
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "text/javascript", "application/javascript":
		return true
	}
	return false
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
