package domain

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func ptr[T any](v T) *T { return &v }

func TestServicePatchApply(t *testing.T) {
	base := Service{ID: 7, Name: "Wash & Fold", Description: "per kg", Price: 4.5, Duration: 120, Active: true}

	tests := []struct {
		name  string
		patch ServicePatch
		want  Service
	}{{
		name:  "empty patch keeps everything",
		patch: ServicePatch{},
		want:  base,
	}, {
		name:  "non-zero values overwrite",
		patch: ServicePatch{Name: ptr("Dry Clean"), Description: ptr("suits"), Price: ptr(12.0), Duration: ptr(1440)},
		want:  Service{ID: 7, Name: "Dry Clean", Description: "suits", Price: 12, Duration: 1440, Active: true},
	}, {
		name:  "zero price is ignored",
		patch: ServicePatch{Price: ptr(0.0)},
		want:  base,
	}, {
		name:  "empty strings and zero duration are ignored",
		patch: ServicePatch{Name: ptr(""), Description: ptr(""), Duration: ptr(0)},
		want:  base,
	}, {
		name:  "explicit false deactivates",
		patch: ServicePatch{Active: ptr(false)},
		want:  Service{ID: 7, Name: "Wash & Fold", Description: "per kg", Price: 4.5, Duration: 120, Active: false},
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := base
			test.patch.Apply(&got)
			qt.Assert(t, got, qt.DeepEquals, test.want)
		})
	}
}

func TestServicePatchReactivates(t *testing.T) {
	s := Service{Active: false}
	ServicePatch{Active: ptr(true)}.Apply(&s)
	qt.Assert(t, s.Active, qt.IsTrue)
}
