// Package models defines the core domain records for the Leaderz tournament
// leaderboard.
//
// # Records
//
//   - Tournament: one event played on a Course, addressed publicly by its key
//   - Course and Hole: the ordered holes of a course with their pars
//   - Team: a group of players reporting one shared score card
//   - Player: a phone number, optionally linked to a team
//   - TeamScore: strokes for one (team, hole) pair
//   - ChatMessage: append-only leaderboard chat, attributed to a team
//
// Derived views (LeaderboardEntry, ChatPage) are computed by the storage layer
// and never persisted.
//
// # Design Principles
//
//  1. Relationships use ID strings, not pointers
//  2. Timestamps are Unix seconds, matching the storage layer
//  3. JSON tags match the shape served to leaderboard viewers
package models
