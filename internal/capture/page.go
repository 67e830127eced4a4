package capture

import (
	"bytes"
	"fmt"
	"html/template"
)

// DefaultKaTeXURL is the asset base the formula page loads KaTeX from.
const DefaultKaTeXURL = "https://cdn.jsdelivr.net/npm/katex@0.16.9/dist"

const (
	formulaSelector = "#formula"
	stateAttr       = "data-state"
	errorAttr       = "data-error"
)

var pageTemplate = template.Must(template.New("formula").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<link rel="stylesheet" href="{{.KaTeXURL}}/katex.min.css">
<script src="{{.KaTeXURL}}/katex.min.js"></script>
<script src="{{.KaTeXURL}}/contrib/auto-render.min.js"></script>
<style>
html, body { margin: 0; background: transparent; }
#formula { padding: 8px; display: inline-flex; font-size: 1.5rem; }
</style>
</head>
<body>
<div id="formula" style="background-color: {{.Background}}"></div>
<script>
(function () {
	var el = document.getElementById("formula");
	el.textContent = {{.Source}};
	function finish(state, message) {
		if (message) { el.setAttribute("data-error", message); }
		el.setAttribute("data-state", state);
	}
	if (typeof renderMathInElement !== "function") {
		finish("failed", "renderer did not load");
		return;
	}
	try {
		renderMathInElement(el, {
			delimiters: [
				{left: "$$", right: "$$", display: true},
				{left: "$", right: "$", display: false}
			],
			throwOnError: false
		});
	} catch (e) {
		console.error(e);
		finish("failed", String(e));
		return;
	}
	document.fonts.ready.then(function () { finish("ready"); });
})();
</script>
</body>
</html>
`))

type pageData struct {
	KaTeXURL   string
	Background template.CSS
	Source     string
}

// renderPage builds the HTML document hosting the formula element.
func renderPage(katexURL string, src Source, background string) (string, error) {
	if katexURL == "" {
		katexURL = DefaultKaTeXURL
	}
	fill, _ := ParseColor(background)
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		KaTeXURL:   katexURL,
		Background: template.CSS(CSSColor(fill)),
		Source:     src.Delimited(),
	})
	if err != nil {
		return "", fmt.Errorf("capture: build page: %w", err)
	}
	return buf.String(), nil
}
