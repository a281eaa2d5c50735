package main

import "strings"

// todo is one entry in the inspector's demo store.
type todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type todoList struct {
	NextID int    `json:"nextId"`
	Filter string `json:"filter"`
	Items  []todo `json:"items"`
}

// todoAction is decoded from POST /dispatch bodies.
type todoAction struct {
	Type   string `json:"type"`
	ID     int    `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// reduceTodos never mutates l.Items in place.
func reduceTodos(l todoList, a todoAction) todoList {
	switch a.Type {
	case "add":
		title := strings.TrimSpace(a.Title)
		if title == "" {
			return l
		}
		l.NextID++
		items := make([]todo, len(l.Items), len(l.Items)+1)
		copy(items, l.Items)
		l.Items = append(items, todo{ID: l.NextID, Title: title})
	case "toggle":
		items := make([]todo, len(l.Items))
		copy(items, l.Items)
		for i := range items {
			if items[i].ID == a.ID {
				items[i].Done = !items[i].Done
			}
		}
		l.Items = items
	case "remove":
		items := make([]todo, 0, len(l.Items))
		for _, it := range l.Items {
			if it.ID != a.ID {
				items = append(items, it)
			}
		}
		l.Items = items
	case "filter":
		l.Filter = a.Filter
	}
	return l
}
