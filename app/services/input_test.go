package services

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		body    string
		set     bool
		isNull  bool
		project string
	}{
		{body: `{}`},
		{body: `{"project": null}`, set: true, isNull: true},
		{body: `{"project": "p1"}`, set: true, project: "p1"},
	}
	for _, c := range cases {
		t.Run(c.body, func(t *testing.T) {
			is := is.New(t)
			var in TaskInput
			is.NoErr(json.Unmarshal([]byte(c.body), &in))
			is.Equal(in.Project.Set, c.set)
			is.Equal(in.Project.Value == nil, c.isNull || !c.set)
			if c.project != "" {
				is.Equal(*in.Project.Value, c.project)
			}
		})
	}
}
