package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// MinCompareSize is the smallest selection that can be compared.
const MinCompareSize = 2

var (
	errNotAnArray = errors.New("blob is not a JSON array")
	errEmptyID    = errors.New("entry without id")
	errDuplicate  = errors.New("duplicate id")
)

// SelectionEvent is emitted on every toggle, including toggles that didn't change the set.
type SelectionEvent struct {
	Neo      NearEarthObject
	Included bool // requested state
	Changed  bool // whether the set contents changed
	Size     int  // set size after the toggle
}

// SelectionSet is the ordered set of objects picked for comparison, unique by id.
// It is owned by a single controller and not safe for concurrent use.
type SelectionSet struct {
	neos      []NearEarthObject
	ids       map[string]struct{}
	observers []func(SelectionEvent)
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		neos:      nil,
		ids:       make(map[string]struct{}),
		observers: nil,
	}
}

// Subscribe registers fn to be called after every Toggle.
func (sel *SelectionSet) Subscribe(fn func(SelectionEvent)) {
	sel.observers = append(sel.observers, fn)
}

// Toggle adds neo when included is true and removes it otherwise. Adding a present id or
// removing an absent one leaves the set unchanged. Reports whether the set changed.
func (sel *SelectionSet) Toggle(neo NearEarthObject, included bool) bool {
	_, present := sel.ids[neo.ID]
	changed := false

	switch {
	case included && !present:
		sel.ids[neo.ID] = struct{}{}
		sel.neos = append(sel.neos, neo)
		changed = true
	case !included && present:
		delete(sel.ids, neo.ID)
		sel.neos = slices.DeleteFunc(sel.neos, func(n NearEarthObject) bool { return n.ID == neo.ID })
		changed = true
	}

	event := SelectionEvent{Neo: neo, Included: included, Changed: changed, Size: len(sel.neos)}
	for _, fn := range sel.observers {
		fn(event)
	}

	return changed
}

// Contains reports whether an object with id is selected.
func (sel *SelectionSet) Contains(id string) bool {
	_, ok := sel.ids[id]
	return ok
}

// Len returns the number of selected objects.
func (sel *SelectionSet) Len() int {
	return len(sel.neos)
}

// Items returns the selected objects in selection order.
func (sel *SelectionSet) Items() []NearEarthObject {
	return slices.Clone(sel.neos)
}

// IDs returns the selected ids in selection order.
func (sel *SelectionSet) IDs() []string {
	ids := make([]string, 0, len(sel.neos))
	for i := range sel.neos {
		ids = append(ids, sel.neos[i].ID)
	}

	return ids
}

// CanCompare reports whether enough objects are selected for a comparison.
func (sel *SelectionSet) CanCompare() bool {
	return len(sel.neos) >= MinCompareSize
}

// Validate returns a *ValidationError if the selection is too small to compare.
func (sel *SelectionSet) Validate() error {
	if sel.CanCompare() {
		return nil
	}

	return &ValidationError{Selected: len(sel.neos), Required: MinCompareSize}
}

// Serialize encodes the selection as a JSON array of feed records.
func (sel *SelectionSet) Serialize() ([]byte, error) {
	records := make([]neoRecord, 0, len(sel.neos))
	for i := range sel.neos {
		records = append(records, toRecord(&sel.neos[i]))
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("serialize selection: %w", err)
	}

	return blob, nil
}

// DeserializeSelection reads a blob written by Serialize.
func DeserializeSelection(blob []byte) (*SelectionSet, error) {
	var records []neoRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, &DeserializationError{Cause: err}
	}
	if records == nil {
		return nil, &DeserializationError{Cause: errNotAnArray}
	}

	sel := NewSelectionSet()
	for i := range records {
		neo := records[i].toNeo()
		if neo.ID == "" {
			return nil, &DeserializationError{Cause: fmt.Errorf("entry %d: %w", i, errEmptyID)}
		}
		if sel.Contains(neo.ID) {
			return nil, &DeserializationError{Cause: fmt.Errorf("entry %d: %w %s", i, errDuplicate, neo.ID)}
		}
		sel.ids[neo.ID] = struct{}{}
		sel.neos = append(sel.neos, neo)
	}

	return sel, nil
}

// Persist validates the selection and writes it to the store under SelectionKey, handing it
// over to the comparison view.
func (sel *SelectionSet) Persist(store Store) error {
	if err := sel.Validate(); err != nil {
		return err
	}

	blob, err := sel.Serialize()
	if err != nil {
		return err
	}

	if err := store.Put(SelectionKey, blob); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}

	return nil
}

// Clear empties the selection and removes any persisted blob.
func (sel *SelectionSet) Clear(store Store) error {
	sel.neos = nil
	sel.ids = make(map[string]struct{})

	if store == nil {
		return nil
	}

	if err := store.Delete(SelectionKey); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}

	return nil
}

// LoadSelection reads the persisted selection. It returns ErrNoSelection when nothing was
// persisted and a *DeserializationError when the blob is malformed.
func LoadSelection(store Store) (*SelectionSet, error) {
	blob, err := store.Get(SelectionKey)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSelection
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}

	return DeserializeSelection(blob)
}
