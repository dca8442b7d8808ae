package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// writeStructured renders v as JSON or YAML. Table output is handled by each command.
// YAML is produced from the JSON encoding so both formats share field names.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return err
		}
		plainStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(&node)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// plainStyle drops the flow and quoting styles inherited from the JSON source.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plainStyle(c)
	}
}
