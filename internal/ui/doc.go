// Package ui implements the terminal dashboard for the relay.
//
// The dashboard shows recent submissions with an insights footer (totals and
// most requested tracks/artists), refreshed on demand. Built with bubbletea
// and the bubbles list component.
package ui
