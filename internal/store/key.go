package store

import "strings"

// CacheKey builds the canonical cache key for one (query, agent) pair.
// Queries are normalized so trivially different phrasings hit the same entry.
func CacheKey(query, agentID string) string {
	return NormalizeQuery(query) + "|" + agentID
}

// NormalizeQuery lowercases and collapses internal whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
