package diff

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// Kind is the type of an edit operation. Kinds sort in script order.
type Kind int

// Edit kinds.
const (
	KindRemove Kind = iota + 1
	KindInsert
	KindUpdate
	KindMove
	KindKeep
)

// Kinds lists every kind in script order.
func Kinds() []Kind {
	return []Kind{KindRemove, KindInsert, KindUpdate, KindMove, KindKeep}
}

func (kind Kind) String() string {
	switch kind {
	case KindRemove:
		return "remove"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindMove:
		return "move"
	case KindKeep:
		return "keep"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its name.
func (kind Kind) MarshalText() ([]byte, error) {
	if kind < KindRemove || kind > KindKeep {
		return nil, fmt.Errorf("unknown edit kind %d", int(kind))
	}

	return []byte(kind.String()), nil
}

// UnmarshalText decodes a kind name.
func (kind *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range Kinds() {
		if strings.EqualFold(candidate.String(), string(text)) {
			*kind = candidate

			return nil
		}
	}

	return fmt.Errorf("unknown edit kind %q", text)
}

// Edit is one operation of an edit script.
//
// Insert carries only Target, Remove only Source; Keep, Update, and Move carry
// both. Slots lists the scalar slots that differ for an Update.
type Edit struct {
	Source *node.Node
	Target *node.Node
	Slots  []string
	Kind   Kind
}

// Key identifies an edit by kind and node identity. Two edits that look alike
// but reference different tree positions have different keys.
type Key struct {
	Source *node.Node
	Target *node.Node
	Kind   Kind
}

// Key returns the edit's identity.
func (edit Edit) Key() Key {
	return Key{Kind: edit.Kind, Source: edit.Source, Target: edit.Target}
}

// Node returns the node the edit is anchored at: the target for Insert and the
// source for everything else.
func (edit Edit) Node() *node.Node {
	if edit.Kind == KindInsert {
		return edit.Target
	}

	return edit.Source
}

// Mirror returns the edit as seen from diffing target against source.
func (edit Edit) Mirror() Edit {
	mirrored := Edit{Kind: edit.Kind, Source: edit.Target, Target: edit.Source, Slots: edit.Slots}

	switch edit.Kind {
	case KindInsert:
		mirrored.Kind = KindRemove
	case KindRemove:
		mirrored.Kind = KindInsert
	case KindUpdate, KindMove, KindKeep:
	}

	return mirrored
}

func (edit Edit) String() string {
	switch edit.Kind {
	case KindInsert:
		return fmt.Sprintf("Insert(%s)", edit.Target)
	case KindRemove:
		return fmt.Sprintf("Remove(%s)", edit.Source)
	case KindUpdate, KindMove, KindKeep:
	}

	name := edit.Kind.String()

	return fmt.Sprintf("%s%s(%s, %s)", strings.ToUpper(name[:1]), name[1:], edit.Source, edit.Target)
}

// Script is an ordered edit script: Remove, Insert, Update, Move, then Keep,
// each group in pre-order of its anchor node.
type Script []Edit

// Delta returns the script without Keep edits.
func (script Script) Delta() Script {
	return script.Filter(KindRemove, KindInsert, KindUpdate, KindMove)
}

// Filter returns the edits whose kind is one of kinds.
func (script Script) Filter(kinds ...Kind) Script {
	filtered := make(Script, 0, len(script))

	for _, edit := range script {
		for _, kind := range kinds {
			if edit.Kind == kind {
				filtered = append(filtered, edit)

				break
			}
		}
	}

	return filtered
}

// Count returns the number of edits of the given kind.
func (script Script) Count(kind Kind) int {
	count := 0

	for _, edit := range script {
		if edit.Kind == kind {
			count++
		}
	}

	return count
}

// Set returns the script as a set of edit keys.
func (script Script) Set() map[Key]struct{} {
	set := make(map[Key]struct{}, len(script))

	for _, edit := range script {
		set[edit.Key()] = struct{}{}
	}

	return set
}

// Summary counts edits per kind.
type Summary struct {
	Remove int `json:"remove"`
	Insert int `json:"insert"`
	Update int `json:"update"`
	Move   int `json:"move"`
	Keep   int `json:"keep"`
}

// Total returns the number of edits, Keep included.
func (summary Summary) Total() int {
	return summary.Remove + summary.Insert + summary.Update + summary.Move + summary.Keep
}

// Changes returns the number of edits excluding Keep.
func (summary Summary) Changes() int {
	return summary.Total() - summary.Keep
}

// Summarize counts the script's edits per kind.
func (script Script) Summarize() Summary {
	return Summary{
		Remove: script.Count(KindRemove),
		Insert: script.Count(KindInsert),
		Update: script.Count(KindUpdate),
		Move:   script.Count(KindMove),
		Keep:   script.Count(KindKeep),
	}
}
