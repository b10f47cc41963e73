// Package model contains domain types for the spotlight application.
// These types are independent of any external GitHub library.
package model

// Organization identifies the GitHub organization a run is scoped to.
// It is resolved once per run and never mutated afterwards.
type Organization struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}
