package helpers

import (
	"bytes"
	"html/template"

	"github.com/turanweb/turan/internal/assets"
	. "maragu.dev/gomponents"
)

// RenderStaticToRaw will return an empty string when the file isn't found
func RenderStaticToRaw(filePath string) Node {
	stuff, err := assets.Read(filePath)
	if err != nil {
		return Raw("")
	}

	return Raw(string(stuff))
}

// RenderSVG will return an empty string when the file is not found,
// to avoid returning an error
func RenderSVG(iconPath, classes string) Node {
	stuff, err := assets.Read("icons/" + iconPath)
	if err != nil {
		return Raw("")
	}
	tmpl, err := template.New(iconPath).Parse(string(stuff))
	if err != nil {
		return Raw("")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, classes); err != nil {
		return Raw("")
	}

	return Raw(buf.String())
}
