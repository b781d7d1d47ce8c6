package core

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ExecuteTemplate, verilen içeriği (content) sağlanan veri (data) ile işler.
// data genellikle *core.SystemContext olacaktır.
func ExecuteTemplate(content string, data interface{}) (string, error) {
	// "MissingKeyError" ile, olmayan bir değişken kullanılırsa hata vermesini sağlıyoruz.
	tmpl, err := template.New("ifprop").Option("missingkey=error").Parse(content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// RenderParams returns a copy of params with every string containing "{{"
// rendered against data, recursing into maps and lists. So a property can
// read `mtu: "{{ if eq .OS \"linux\" }}9000{{ else }}8232{{ end }}"`.
func RenderParams(params map[string]interface{}, data interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		rendered, err := renderValue(v, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = rendered
	}
	return out, nil
}

func renderValue(v interface{}, data interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		if !strings.Contains(val, "{{") {
			return val, nil
		}
		return ExecuteTemplate(val, data)
	case map[string]interface{}:
		return RenderParams(val, data)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			rendered, err := renderValue(item, data)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}
