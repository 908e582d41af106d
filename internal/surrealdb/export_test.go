package surrealdb

// RecordData exports recordData for testing.
var RecordData = recordData //nolint:gochecknoglobals // test export

// ToInt exports toInt for testing.
var ToInt = toInt //nolint:gochecknoglobals // test export
