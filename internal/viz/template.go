package viz

import "html/template"

// templateData is the payload injected into the page template.
type templateData struct {
	Title          string
	ElementsJSON   template.JS
	StylesheetJSON template.JS
	Layout         string
	LiveReload     bool
}

// htmlTemplate is the single-page Cytoscape document. Elements and
// stylesheet are injected as JSON at render time, so the page needs no
// further round trips except the optional reload stream.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/cytoscape@3.30.2/dist/cytoscape.min.js"></script>
<style>
  html, body { margin: 0; height: 100%; font-family: sans-serif; }
  #cy { width: 100%; height: 100%; }
</style>
</head>
<body>
<div id="cy"></div>
<script>
  var cy = cytoscape({
    container: document.getElementById('cy'),
    elements: {{.ElementsJSON}},
    style: {{.StylesheetJSON}},
    layout: { name: {{.Layout}} }
  });
</script>
{{if .LiveReload}}
<script>
  (function() {
    var source = new EventSource('/events');
    source.onmessage = function() { location.reload(); };
  })();
</script>
{{end}}
</body>
</html>
`
