package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MaxCategories is the maximum number of categories a guild may configure.
// Discord allows at most 25 buttons on a single message, so the panel cannot
// render more.
const MaxCategories = 25

var (
	// ErrDuplicateCategory is returned when adding a category whose ID is
	// already taken.
	ErrDuplicateCategory = errors.New("category id already exists")

	// ErrCategoryLimit is returned when adding a category would exceed
	// MaxCategories.
	ErrCategoryLimit = fmt.Errorf("category limit of %d reached", MaxCategories)

	// ErrCategoryNotFound is returned when updating a category that does not
	// exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryEmbed is the embed sent into a freshly created ticket channel.
type CategoryEmbed struct {
	// Title is the embed title.
	Title string `json:"title" bson:"title"`

	// Description is the embed body.
	Description string `json:"description" bson:"description"`

	// Color is the embed accent colour.
	Color int `json:"color" bson:"color"`
}

// Category is an admin-defined ticket type.
type Category struct {
	// ID is the immutable slug the category is keyed by. It is carried by the
	// surrounding CategorySet key, not by the category document itself.
	ID string `json:"-" bson:"-"`

	// Name is the display name shown on the panel button.
	Name string `json:"name" bson:"name"`

	// Emoji decorates the panel button.
	Emoji string `json:"emoji" bson:"emoji"`

	// Description is shown on the panel embed.
	Description string `json:"description" bson:"description"`

	// StaffPing is whether the configured staff roles are pinged when a
	// ticket of this category is opened.
	StaffPing bool `json:"staff_ping" bson:"staff_ping"`

	// DestinationCategoryID is the Discord channel category that created
	// ticket channels are filed under. Empty means the guild root.
	DestinationCategoryID string `json:"category_id,omitempty" bson:"category_id,omitempty"`

	// Embed is the welcome embed for the ticket channel.
	Embed CategoryEmbed `json:"embed" bson:"embed"`
}

// CategorySet is an insertion-ordered collection of categories with map
// semantics on the category ID. The order defines the panel button order.
//
// It serializes (both JSON and BSON) as an object keyed by category ID, the
// same shape the stored guild documents use, and preserves key order on the
// way back in.
type CategorySet struct {
	cats []Category
}

// NewCategorySet creates a set from the given categories in order.
func NewCategorySet(cats ...Category) CategorySet {
	s := CategorySet{}
	for _, c := range cats {
		// Errors here mean duplicate input; last writer loses.
		_ = s.Add(c)
	}
	return s
}

// Len returns the number of categories.
func (s *CategorySet) Len() int {
	return len(s.cats)
}

// All returns the categories in insertion order. The returned slice is a
// copy; mutating it does not affect the set.
func (s *CategorySet) All() []Category {
	out := make([]Category, len(s.cats))
	copy(out, s.cats)
	return out
}

// IDs returns the category IDs in insertion order.
func (s *CategorySet) IDs() []string {
	out := make([]string, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c.ID)
	}
	return out
}

// Get returns the category with the given ID.
func (s *CategorySet) Get(id string) (*Category, bool) {
	for i := range s.cats {
		if s.cats[i].ID == id {
			c := s.cats[i]
			return &c, true
		}
	}
	return nil, false
}

// ByLabel returns the first category whose display name matches label. Used
// to re-bind restored tickets, which only persist the label they were
// created under.
func (s *CategorySet) ByLabel(label string) (*Category, bool) {
	for i := range s.cats {
		if s.cats[i].Name == label {
			c := s.cats[i]
			return &c, true
		}
	}
	return nil, false
}

// First returns the first configured category, or nil if there are none.
func (s *CategorySet) First() *Category {
	if len(s.cats) == 0 {
		return nil
	}
	c := s.cats[0]
	return &c
}

// Add appends a category. It rejects a duplicate ID and the add that would
// exceed MaxCategories, in both cases without mutating the set.
func (s *CategorySet) Add(c Category) error {
	if _, ok := s.Get(c.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
	}
	if len(s.cats) >= MaxCategories {
		return ErrCategoryLimit
	}
	s.cats = append(s.cats, c)
	return nil
}

// Update replaces the category with the given ID in place, keeping its
// position in the order.
func (s *CategorySet) Update(id string, c Category) error {
	for i := range s.cats {
		if s.cats[i].ID == id {
			c.ID = id
			s.cats[i] = c
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
}

// Remove deletes the category with the given ID and reports whether it
// existed.
func (s *CategorySet) Remove(id string) bool {
	for i := range s.cats {
		if s.cats[i].ID == id {
			s.cats = append(s.cats[:i], s.cats[i+1:]...)
			return true
		}
	}
	return false
}

// MarshalJSON implements the json.Marshaler interface.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")
	for i, c := range s.cats {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Key order in the
// document becomes the insertion order of the set.
func (s *CategorySet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("categories: expected object, got %v", tok)
	}

	s.cats = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("categories: expected string key, got %v", keyTok)
		}

		var c Category
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("categories: decoding %q: %w", key, err)
		}
		c.ID = key
		s.cats = append(s.cats, c)
	}
	return nil
}

// MarshalBSONValue implements the bsoncodec.ValueMarshaler interface.
func (s CategorySet) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(s.cats))
	for _, c := range s.cats {
		doc = append(doc, bson.E{Key: c.ID, Value: c})
	}
	return bson.MarshalValue(doc)
}

// UnmarshalBSONValue implements the bsoncodec.ValueUnmarshaler interface.
// Element order in the stored document becomes the insertion order.
func (s *CategorySet) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		s.cats = nil
		return nil
	}
	if t != bson.TypeEmbeddedDocument {
		return fmt.Errorf("categories: expected document, got %s", t)
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return fmt.Errorf("categories: reading document: %w", err)
	}

	s.cats = nil
	for _, e := range elems {
		val := e.Value()
		if val.Type != bson.TypeEmbeddedDocument {
			return fmt.Errorf("categories: %q is not a document", e.Key())
		}

		var c Category
		if err := bson.Unmarshal(val.Document(), &c); err != nil {
			return fmt.Errorf("categories: decoding %q: %w", e.Key(), err)
		}
		c.ID = e.Key()
		s.cats = append(s.cats, c)
	}
	return nil
}
