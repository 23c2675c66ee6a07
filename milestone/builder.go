// Package milestone turns project records into calendar events, one per
// scheduled milestone.
package milestone

import (
	"fmt"

	"github.com/haydenhayden/projectzen/domain"
	"github.com/haydenhayden/projectzen/notion"
)

// Kind is a tracked milestone: the date property it is read from and the
// title given to its events.
type Kind struct {
	Property string
	Title    string
}

var (
	Development = Kind{Property: "📍开发", Title: "开发"}
	Integration = Kind{Property: "📍联调", Title: "联调"}
	Showcase    = Kind{Property: "📍showcase", Title: "🚩Showcase"}
	Test        = Kind{Property: "📍测试", Title: "测试"}
	Release     = Kind{Property: "📍上线", Title: "🚩上线"}
)

// Kinds lists the tracked milestones in the order their events are built.
var Kinds = []Kind{Development, Integration, Showcase, Test, Release}

const nameProperty = "Name"

// Linked document properties.
const (
	docPRD      = "📄PRD"
	docAPI      = "📄API"
	docJira     = "📄JIRA"
	docUI       = "📄UI"
	docCase     = "📄CASE"
	docSchedule = "📄排期表"
)

// Build returns the events of all pages, in page order then Kinds order.
func Build(pages []notion.Page) []domain.Event {
	events := make([]domain.Event, 0, len(pages))
	for _, p := range pages {
		events = append(events, BuildPage(p)...)
	}
	return events
}

// BuildPage returns one event per milestone holding a date. Milestones without
// a date property are skipped.
func BuildPage(p notion.Page) []domain.Event {
	name, _ := p.Properties.Title(nameProperty)
	project := domain.Project{
		ID:   p.ContainerID(),
		Name: name,
		URL:  p.URL,
	}
	extra := extractDocuments(p.Properties)

	var events []domain.Event
	for _, k := range Kinds {
		r, ok := p.Properties.Date(k.Property)
		if !ok {
			continue
		}
		e := domain.NewEvent(eventID(project, p, k), fmt.Sprintf("%s [%s]", k.Title, project.Name), project, r.Start, r.End)
		e.Extra = extra
		events = append(events, e)
	}
	return events
}

// eventID is unique per record and milestone: records of one database share the
// project id, so the page id is part of it.
func eventID(project domain.Project, p notion.Page, k Kind) string {
	if project.ID == p.ID {
		return fmt.Sprintf("%s_%s", project.ID, k.Title)
	}
	return fmt.Sprintf("%s_%s_%s", project.ID, p.ID, k.Title)
}

func extractDocuments(props notion.Properties) domain.Extra {
	url := func(key string) string {
		v, _ := props.URL(key)
		return v
	}
	return domain.Extra{
		PRD:      url(docPRD),
		API:      url(docAPI),
		Jira:     url(docJira),
		UI:       url(docUI),
		Case:     url(docCase),
		Schedule: url(docSchedule),
	}
}
