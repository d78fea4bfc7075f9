package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule mounts its routes under /api.
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// prioritizer lets a module choose its mount order; lower mounts first,
// default 100.
type prioritizer interface{ Priority() int }

func mountAll(api *gin.RouterGroup, mods []APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
