package sandbox

import (
	"html"
	"strings"
)

// ReporterName is the window property the guard installs. The fragment's
// catch block calls it; it is also what the headless surface looks for.
const ReporterName = "__coursebookReport"

// NoticeClass is the class carried by in-document error notices
const NoticeClass = "simulation-error"

// NoticePrefix starts the text of every in-document error notice
const NoticePrefix = "Simulation error: "

// guardScript runs in <head> before any fragment. The error listener picks
// up fragments that fail to parse (the try block never runs for those) and
// errors raised later from callbacks.
const guardScript = `(function () {
  function report(err) {
    var message = err && err.message ? err.message : String(err);
    var note = document.createElement("div");
    note.setAttribute("class", "` + NoticeClass + `");
    note.setAttribute("role", "alert");
    note.setAttribute("style", "margin:12px;padding:12px 16px;border:1px solid #fecaca;border-radius:8px;background:#fef2f2;color:#b91c1c;font:14px/1.4 system-ui,sans-serif;");
    note.textContent = "` + NoticePrefix + `" + message;
    (document.body || document.documentElement).appendChild(note);
  }
  window.` + ReporterName + ` = report;
  window.addEventListener("error", function (event) {
    report(event.error || event.message);
  });
})();
`

// Compose assembles u into a complete document. It never fails and has no
// side effects: malformed fragments are embedded as they are and any
// failure surfaces at execution time as an in-document notice.
//
// Fragments are not validated or sanitized. The only rewrites are of
// "</style" and "</script" sequences inside their own blocks, which would
// otherwise end the block early, and of "<!--" in the script, which would
// let a later "<script" keep the block open past its end tag. Inside JS
// strings, regexes and comments "<\/script" and "\x3C!--" mean the same
// thing.
func Compose(u Unit) Document {
	var b strings.Builder
	b.Grow(len(guardScript) + len(u.Title) + len(u.Markup) + len(u.Style) + len(u.Script) + 512)

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(u.Title))
	b.WriteString("</title>\n")

	b.WriteString("<style>\n")
	b.WriteString(escapeEndTag(u.Style, "style"))
	b.WriteString("\n</style>\n")

	b.WriteString("<script>\n")
	b.WriteString(guardScript)
	b.WriteString("</script>\n")
	b.WriteString("</head>\n<body>\n")

	b.WriteString(u.Markup)
	b.WriteString("\n")

	b.WriteString("<script>\ntry {\n")
	b.WriteString(escapeScript(u.Script))
	b.WriteString("\n} catch (e) {\n  window.")
	b.WriteString(ReporterName)
	b.WriteString("(e);\n}\n</script>\n")

	b.WriteString("</body>\n</html>\n")

	return Document{
		unitID: u.ID,
		title:  u.Title,
		html:   b.String(),
	}
}

// escapeScript keeps a script fragment inside its <script> element
func escapeScript(s string) string {
	return strings.ReplaceAll(escapeEndTag(s, "script"), "<!--", `\x3C!--`)
}

// escapeEndTag rewrites every case-insensitive "</tag" in s to "<\/tag".
func escapeEndTag(s, tag string) string {
	needle := "</" + tag
	lower := asciiLower(s)
	if !strings.Contains(lower, needle) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; ; {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		at := i + j
		b.WriteString(s[i:at])
		b.WriteString(`<\/`)
		b.WriteString(s[at+2 : at+len(needle)])
		i = at + len(needle)
	}
	return b.String()
}

// asciiLower lowercases A-Z only, so byte offsets match the input
func asciiLower(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if 'A' <= c && c <= 'Z' {
			buf[i] = c + ('a' - 'A')
		}
	}
	return string(buf)
}
