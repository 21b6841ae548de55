// Package domain contains the core business entities of the campaign
// management service: users, advertising campaigns, and AI generation jobs.
// Entities validate themselves on construction and enforce their own status
// transitions; persistence and transport concerns live elsewhere.
package domain
