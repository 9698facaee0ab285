package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// blocksSchema covers the fields of minecraft-data blocks.json read below.
const blocksSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "minStateId", "maxStateId"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "minStateId": {"type": "integer", "minimum": 0},
      "maxStateId": {"type": "integer", "minimum": 0},
      "states": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["name", "type", "num_values"],
          "properties": {
            "name": {"type": "string"},
            "type": {"enum": ["bool", "enum", "int", "direction"]},
            "num_values": {"type": "integer", "minimum": 1},
            "values": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    }
  }
}`

const schemaURL = "blocks.schema.json"

type blockJSON struct {
	Name       string      `json:"name"`
	MinStateID int32       `json:"minStateId"`
	MaxStateID int32       `json:"maxStateId"`
	States     []stateJSON `json:"states"`
}

type stateJSON struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	NumValues int      `json:"num_values"`
	Values    []string `json:"values"`
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(blocksSchema)); err != nil {
		return nil, fmt.Errorf("add blocks schema: %w", err)
	}
	return c.Compile(schemaURL)
}

// LoadFile reads a minecraft-data blocks.json file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads minecraft-data blocks.json from r, validates it and expands every
// block into its states.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}

	var blocks []blockJSON
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg := &Registry{
		byState: make(map[int32]Descriptor),
		byKey:   make(map[string]int32),
	}
	for _, b := range blocks {
		if err := expand(reg, b); err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Name, err)
		}
	}
	return reg, nil
}

// expand registers every state of b. The last property varies fastest, so
// state id = minStateId + sum(valueIndex(p) * product(numValues of later p)).
func expand(reg *Registry, b blockJSON) error {
	total := int32(1)
	for _, s := range b.States {
		total *= int32(s.NumValues)
	}
	if b.MaxStateID-b.MinStateID+1 != total {
		return fmt.Errorf("state range %d..%d does not hold %d combinations", b.MinStateID, b.MaxStateID, total)
	}

	values := make([][]string, len(b.States))
	for i, s := range b.States {
		values[i] = stateValues(s)
		if len(values[i]) != s.NumValues {
			return fmt.Errorf("property %s: %d values listed, %d declared", s.Name, len(values[i]), s.NumValues)
		}
	}

	for offset := int32(0); offset < total; offset++ {
		d := Descriptor{Name: b.Name}
		if len(b.States) > 0 {
			d.Properties = make(map[string]string, len(b.States))
		}
		rest := offset
		for i := len(b.States) - 1; i >= 0; i-- {
			n := int32(b.States[i].NumValues)
			d.Properties[b.States[i].Name] = values[i][rest%n]
			rest /= n
		}
		if err := reg.add(b.MinStateID+offset, d); err != nil {
			return err
		}
	}
	return nil
}

func stateValues(s stateJSON) []string {
	if len(s.Values) > 0 {
		return s.Values
	}
	switch s.Type {
	case "bool":
		return []string{"true", "false"}
	default:
		out := make([]string, s.NumValues)
		for i := range out {
			out[i] = strconv.Itoa(i)
		}
		return out
	}
}
