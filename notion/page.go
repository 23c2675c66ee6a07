package notion

import (
	"encoding/json"

	"github.com/jomei/notionapi"
)

// Page is a database record reduced to what the milestone builder reads.
type Page struct {
	ID         string
	URL        string
	Parent     notionapi.Parent
	Properties Properties
}

func PageOf(p notionapi.Page) Page {
	return Page{
		ID:         string(p.ID),
		URL:        p.URL,
		Parent:     p.Parent,
		Properties: Properties(p.Properties),
	}
}

// UnmarshalJSON reads a page object as returned by the API.
func (p *Page) UnmarshalJSON(data []byte) error {
	var raw notionapi.Page
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PageOf(raw)
	return nil
}

// ContainerID returns the id of the parent database, or the page's own id when
// the page does not live in a database.
func (p Page) ContainerID() string {
	if string(p.Parent.Type) == "database_id" && p.Parent.DatabaseID != "" {
		return string(p.Parent.DatabaseID)
	}
	return p.ID
}

type PropertyType = notionapi.PropertyType

const (
	TypeTitle       = notionapi.PropertyTypeTitle
	TypeURL         = notionapi.PropertyTypeURL
	TypeDate        = notionapi.PropertyTypeDate
	TypeSelect      = notionapi.PropertyTypeSelect
	TypeMultiSelect = notionapi.PropertyTypeMultiSelect
)

type Option struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func optionOf(o notionapi.Option) Option {
	return Option{ID: string(o.ID), Name: o.Name, Color: string(o.Color)}
}

// Properties are the typed properties of a page keyed by name.
type Properties notionapi.Properties
