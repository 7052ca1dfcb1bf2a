package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type courseRef struct{ id int }

func (c courseRef) String() string { return "course#" + string(rune('0'+c.id)) }

func TestKey(t *testing.T) {
	authorID := 42
	var missing *int

	cases := []struct {
		name   string
		params []interface{}
		want   string
	}{
		{name: "no params", want: "courses:listAll"},
		{name: "single", params: []interface{}{42}, want: "courses:listAll:42"},
		{name: "ordered", params: []interface{}{3, 7}, want: "courses:listAll:3_7"},
		{name: "nil skipped", params: []interface{}{nil, 3, nil, "PUBLISHED"}, want: "courses:listAll:3_PUBLISHED"},
		{name: "all nil", params: []interface{}{nil, missing}, want: "courses:listAll"},
		{name: "pointer dereferenced", params: []interface{}{&authorID}, want: "courses:listAll:42"},
		{name: "stringer", params: []interface{}{courseRef{id: 5}}, want: "courses:listAll:course#5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Key("courses", "listAll", tc.params...))
		})
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := Key("enrollments", "listForStudent", 7, int64(3), at)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Key("enrollments", "listForStudent", 7, int64(3), at))
	}
	assert.NotEqual(t, Key("t", "op", 1, 2), Key("t", "op", 2, 1))
	assert.NotContains(t, Key("t", "op"), "op:")
}

func TestStorageKeyAndPattern(t *testing.T) {
	assert.Equal(t, "courses::courses:get:1", StorageKey(RegionCourses, Key("courses", "get", 1)))
	assert.Equal(t, "courses::*", RegionPattern(RegionCourses))
}
