// Package topic defines the topic strings carried by bus messages.
//
// Topics are hierarchical, dot separated names:
//
//	bus.error          - a topology operation was rejected
//	damage.report      - a collaborator-defined event
//
// Subscription filters are matched against topics with a plain string
// prefix test. The empty filter matches every topic, and a filter of
// "damage" matches "damage" and "damage.report" but not "armor.damage".
// Matching is not segment aware, so "dam" also matches "damage".
package topic
