package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/spec"
)

// Document errors.
var (
	ErrInvalidDocument  = errors.New("invalid tree document")
	ErrUnknownSlotKind  = errors.New("unknown slot kind")
	ErrUnsupportedValue = errors.New("unsupported scalar value")
)

// Format is a tree document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the document format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Issue is a single schema violation found in a tree document.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (issue Issue) String() string {
	return issue.Field + ": " + issue.Description
}

var loadTreeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	schemaBytes, err := spec.TreeSchemaFS.ReadFile(spec.TreeSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	return schema, nil
})

// ParseGeneric decodes raw document bytes into generic Go values without
// validating them.
func ParseGeneric(data []byte, format Format) (any, error) {
	var doc any

	switch format {
	case FormatYAML:
		err := yaml.Unmarshal(data, &doc)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrInvalidDocument, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err := dec.Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDocument, format)
	}

	return doc, nil
}

// ValidateDocument checks a generic document against the embedded tree schema.
// A nil slice means the document is valid.
func ValidateDocument(doc any) ([]Issue, error) {
	schema, err := loadTreeSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		issues = append(issues, Issue{Field: resultErr.Field(), Description: resultErr.Description()})
	}

	return issues, nil
}

// Decode parses, validates, and builds a tree from document bytes.
func Decode(data []byte, format Format) (*Node, error) {
	doc, err := ParseGeneric(data, format)
	if err != nil {
		return nil, err
	}

	return FromGeneric(doc)
}

// FromGeneric validates a generic document and builds the tree it describes.
func FromGeneric(doc any) (*Node, error) {
	issues, err := ValidateDocument(doc)
	if err != nil {
		return nil, err
	}

	if len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, joinIssues(issues))
	}

	return buildTree(doc)
}

func joinIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for idx, issue := range issues {
		parts[idx] = issue.String()
	}

	return strings.Join(parts, "; ")
}

type buildFrame struct {
	raw  map[string]any
	dst  *Node
	path string
}

func buildTree(doc any) (*Node, error) {
	rootRaw, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root must be an object", ErrInvalidDocument)
	}

	root := &Node{}
	stack := []buildFrame{{raw: rootRaw, dst: root, path: ""}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var err error

		stack, err = buildNode(frame, stack)
		if err != nil {
			return nil, err
		}
	}

	return root, nil
}

func buildNode(frame buildFrame, stack []buildFrame) ([]buildFrame, error) {
	tag, _ := frame.raw["tag"].(string)
	builder := NewBuilder(Tag(tag))

	rawSlots, _ := frame.raw["slots"].([]any)

	for _, rawSlot := range rawSlots {
		slotMap, ok := rawSlot.(map[string]any)
		if !ok {
			return stack, fmt.Errorf("%w: %s: slot must be an object", ErrInvalidDocument, pathLabel(frame.path))
		}

		name, _ := slotMap["name"].(string)
		slotPath := frame.path + "/" + name

		switch {
		case hasKey(slotMap, "child"):
			childRaw, isObject := slotMap["child"].(map[string]any)
			if !isObject {
				builder.Child(name, nil)

				continue
			}

			child := &Node{}
			builder.Child(name, child)
			stack = append(stack, buildFrame{raw: childRaw, dst: child, path: slotPath})
		case hasKey(slotMap, "list"):
			items, _ := slotMap["list"].([]any)
			children := make([]*Node, 0, len(items))

			for pos, item := range items {
				itemRaw, isObject := item.(map[string]any)
				if !isObject {
					return stack, fmt.Errorf("%w: %s[%d]: list item must be an object",
						ErrInvalidDocument, slotPath, pos)
				}

				child := &Node{}
				children = append(children, child)
				stack = append(stack, buildFrame{
					raw: itemRaw, dst: child, path: slotPath + "[" + strconv.Itoa(pos) + "]",
				})
			}

			builder.List(name, children...)
		case hasKey(slotMap, "value"):
			typeHint, _ := slotMap["type"].(string)

			value, err := decodeValue(slotMap["value"], typeHint)
			if err != nil {
				return stack, fmt.Errorf("%s: %w", slotPath, err)
			}

			discriminant, _ := slotMap["discriminant"].(bool)
			if discriminant {
				builder.Discriminant(name, value)
			} else {
				builder.Scalar(name, value)
			}
		default:
			return stack, fmt.Errorf("%w: %s", ErrUnknownSlotKind, slotPath)
		}
	}

	built, err := builder.TryBuild()
	if err != nil {
		return stack, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, pathLabel(frame.path), err)
	}

	*frame.dst = *built

	return stack, nil
}

func pathLabel(path string) string {
	if path == "" {
		return "/"
	}

	return path
}

func hasKey(raw map[string]any, key string) bool {
	_, ok := raw[key]

	return ok
}

func decodeValue(raw any, typeHint string) (Value, error) {
	switch typed := raw.(type) {
	case string:
		switch typeHint {
		case "", "string":
			return String(typed), nil
		case "enum":
			return Enum(typed), nil
		}
	case bool:
		if typeHint == "" || typeHint == "bool" {
			return Bool(typed), nil
		}
	case json.Number:
		return decodeNumber(typed.String(), typeHint)
	case int:
		return decodeNumber(strconv.Itoa(typed), typeHint)
	case int64:
		return decodeNumber(strconv.FormatInt(typed, 10), typeHint)
	case uint64:
		return decodeNumber(strconv.FormatUint(typed, 10), typeHint)
	case float64:
		switch typeHint {
		case "", "float":
			return Float(typed), nil
		case "int":
			if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
				return Int(int64(typed)), nil
			}
		}
	}

	return Value{}, fmt.Errorf("%w: %v (type %q)", ErrUnsupportedValue, raw, typeHint)
}

func decodeNumber(text, typeHint string) (Value, error) {
	switch typeHint {
	case "", "int":
		parsed, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Int(parsed), nil
		}

		if typeHint == "int" {
			return Value{}, fmt.Errorf("%w: %s is not an integer", ErrUnsupportedValue, text)
		}
	case "float":
	default:
		return Value{}, fmt.Errorf("%w: number %s with type %q", ErrUnsupportedValue, text, typeHint)
	}

	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %s: %w", ErrUnsupportedValue, text, err)
	}

	return Float(parsed), nil
}

// ToGeneric converts a tree into its document form built from maps and slices.
func ToGeneric(root *Node) map[string]any {
	if root == nil {
		return nil
	}

	docs := make(map[*Node]map[string]any)

	root.VisitPostOrder(func(current *Node) {
		doc := map[string]any{"tag": string(current.Tag)}

		slots := make([]any, 0, len(current.Slots))
		for idx := range current.Slots {
			slots = append(slots, slotDocument(&current.Slots[idx], docs))
		}

		if len(slots) > 0 {
			doc["slots"] = slots
		}

		docs[current] = doc
	})

	return docs[root]
}

func slotDocument(slot *Slot, docs map[*Node]map[string]any) map[string]any {
	doc := map[string]any{"name": slot.Name}

	switch slot.Kind {
	case SlotChild:
		if slot.Child == nil {
			doc["child"] = nil
		} else {
			doc["child"] = docs[slot.Child]
		}
	case SlotList:
		items := make([]any, 0, len(slot.List))
		for _, child := range slot.List {
			items = append(items, docs[child])
		}

		doc["list"] = items
	case SlotScalar:
		doc["value"] = slot.Value.Interface()

		switch slot.Value.Kind() {
		case ValueEnum:
			doc["type"] = "enum"
		case ValueFloat:
			doc["type"] = "float"
		case ValueNone, ValueString, ValueBool, ValueInt:
		}

		if slot.Discriminant {
			doc["discriminant"] = true
		}
	}

	return doc
}

// EncodeJSON renders a tree as an indented JSON document.
func EncodeJSON(root *Node) ([]byte, error) {
	data, err := json.MarshalIndent(ToGeneric(root), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return data, nil
}

// EncodeYAML renders a tree as a YAML document.
func EncodeYAML(root *Node) ([]byte, error) {
	data, err := yaml.Marshal(ToGeneric(root))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	return data, nil
}

// Encode renders a tree in the requested format.
func Encode(root *Node, format Format) ([]byte, error) {
	if format == FormatYAML {
		return EncodeYAML(root)
	}

	return EncodeJSON(root)
}
